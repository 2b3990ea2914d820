// internal/repository/pagination.go
package repository

import (
	"context"
	"fmt"
)

// Order is the cursor pagination direction, by id.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// PaginateRequest is the cursor pagination input spec.md §4.6 describes.
type PaginateRequest struct {
	PerPage int
	Order   Order
	Cursor  *uint64
	OwnerID *uint64
	// Metadata holds table-specific filters, e.g. {"repository": id} when
	// paginating releases.
	Metadata map[string]uint64
}

// PageInfo carries the next cursor, if any.
type PageInfo struct {
	Cursor *uint64
}

// Pagination is the paginate() result envelope.
type Pagination[T Entity] struct {
	Data     []T
	PageInfo PageInfo
}

// Paginate implements the over-fetch-by-one cursor algorithm: fetch
// per_page+1 rows; if that many come back, the last row's id becomes
// next_cursor and is dropped from the page.
func (r *Repository[T, P]) Paginate(ctx context.Context, req PaginateRequest) (Pagination[T], error) {
	perPage := clampPerPage(req.PerPage)
	order := req.Order
	if order == "" {
		order = OrderAsc
	}

	query, args := buildPaginationQuery(r.mapper, order, perPage, req)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Pagination[T]{}, fmt.Errorf("paginate %s: %w", r.mapper.Table(), err)
	}
	defer func() { _ = rows.Close() }()

	entities := make([]T, 0, perPage+1)
	for rows.Next() {
		entity, err := r.mapper.ScanRows(rows)
		if err != nil {
			return Pagination[T]{}, fmt.Errorf("scan %s row: %w", r.mapper.Table(), err)
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return Pagination[T]{}, fmt.Errorf("iterate %s rows: %w", r.mapper.Table(), err)
	}

	var pageInfo PageInfo
	if len(entities) > perPage {
		last := entities[perPage]
		cursor := last.EntityID()
		pageInfo.Cursor = &cursor
		entities = entities[:perPage]
	}

	return Pagination[T]{Data: entities, PageInfo: pageInfo}, nil
}

func buildPaginationQuery[T Entity, P any](mapper Mapper[T, P], order Order, perPage int, req PaginateRequest) (string, []any) {
	cmp := ">="
	direction := "ASC"
	if order == OrderDesc {
		cmp = "<="
		direction = "DESC"
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE 1=1", columnList(mapper.SelectColumns()), mapper.Table())
	args := make([]any, 0, 4)
	argN := 1

	if req.Cursor != nil {
		query += fmt.Sprintf(" AND id %s $%d", cmp, argN)
		args = append(args, *req.Cursor)
		argN++
	}
	if req.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argN)
		args = append(args, *req.OwnerID)
		argN++
	}
	if repoID, ok := req.Metadata["repository"]; ok {
		query += fmt.Sprintf(" AND repository_id = $%d", argN)
		args = append(args, repoID)
		argN++
	}

	query += fmt.Sprintf(" ORDER BY id %s LIMIT $%d", direction, argN)
	args = append(args, perPage+1)

	return query, args
}
