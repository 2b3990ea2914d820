// internal/common/permissions.go
package common

// memberPermissionTable is the stable name->bit mapping for MemberPermissions
// - bit positions must never change between releases.
var memberPermissionTable = map[string]uint64{
	"member:invite":    1 << 0,
	"member:update":    1 << 1,
	"member:kick":      1 << 2,
	"metadata:update":  1 << 3,
	"repo:create":      1 << 4,
	"repo:delete":      1 << 5,
	"webhooks:create":  1 << 6,
	"webhooks:update":  1 << 7,
	"webhooks:delete":  1 << 8,
	"metadata:delete":  1 << 9,
}

// MemberPermissions is the Bitfield governing what a member may do inside a
// repository or organization.
type MemberPermissions struct {
	*Bitfield
}

// NewMemberPermissions builds a MemberPermissions bitfield from raw bits.
func NewMemberPermissions(bits uint64) *MemberPermissions {
	return &MemberPermissions{Bitfield: NewBitfield(bits, memberPermissionTable)}
}
