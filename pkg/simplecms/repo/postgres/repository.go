package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-cms/pkg/simplecms"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements simplecms.Repository using PostgreSQL.
//
// Uniqueness of (user_id, title) and (user_id, slug) among non-deleted
// content is enforced by partial unique indexes, and at-most-one New record
// per user by a partial unique index on (user_id) WHERE status = 'New'.
// Violations surface as unique_violation and are mapped to ErrConflict, so
// the check-then-insert race in the service probe cannot produce duplicates.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func mapError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return simplecms.ErrConflict
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s: referenced record not found", operation)
		}
	}
	return fmt.Errorf("%s: %w", operation, err)
}

const contentColumns = `
	c.id, c.user_id, c.title, c.rich_content, c.asset_url, c.slug,
	c.category_id, c.status, c.created_on, c.updated_on,
	cat.name, cat.description`

// scanContent scans a content row joined with its (nullable) category.
func scanContent(row pgx.Row) (*simplecms.Content, error) {
	var (
		content      simplecms.Content
		categoryName *string
		categoryDesc *string
	)
	err := row.Scan(
		&content.ID, &content.UserID, &content.Title, &content.RichContent,
		&content.AssetURL, &content.Slug, &content.CategoryID, &content.Status,
		&content.CreatedOn, &content.UpdatedOn, &categoryName, &categoryDesc)
	if err != nil {
		return nil, err
	}
	if content.CategoryID != nil && categoryName != nil {
		content.Category = &simplecms.Category{
			ID:     *content.CategoryID,
			UserID: content.UserID,
			Name:   *categoryName,
		}
		if categoryDesc != nil {
			content.Category.Description = *categoryDesc
		}
	}
	return &content, nil
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *simplecms.Content) error {
	query := `
		INSERT INTO content (
			id, user_id, title, rich_content, asset_url, slug,
			category_id, status, created_on, updated_on
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		content.ID, content.UserID, content.Title, content.RichContent,
		content.AssetURL, content.Slug, content.CategoryID, content.Status,
		content.CreatedOn, content.UpdatedOn)
	if err != nil {
		return mapError("create content", err)
	}
	if len(content.Tags) > 0 {
		return r.replaceContentTags(ctx, content)
	}
	return nil
}

func (r *Repository) getContentWhere(ctx context.Context, where string, args ...interface{}) (*simplecms.Content, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content c
		LEFT JOIN category cat ON cat.id = c.category_id
		WHERE ` + where

	content, err := scanContent(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrContentNotFound
		}
		return nil, err
	}
	if err := r.loadTags(ctx, []*simplecms.Content{content}); err != nil {
		return nil, err
	}
	return content, nil
}

func (r *Repository) GetContent(ctx context.Context, userID, id uuid.UUID) (*simplecms.Content, error) {
	return r.getContentWhere(ctx, `c.id = $1 AND c.user_id = $2 AND c.status <> 'Deleted'`, id, userID)
}

func (r *Repository) GetContentByID(ctx context.Context, id uuid.UUID) (*simplecms.Content, error) {
	return r.getContentWhere(ctx, `c.id = $1 AND c.status <> 'Deleted'`, id)
}

func (r *Repository) GetPublishedBySlug(ctx context.Context, slug string) (*simplecms.Content, error) {
	return r.getContentWhere(ctx, `c.slug = $1 AND c.status = 'Published'`, slug)
}

func (r *Repository) FindNewContent(ctx context.Context, userID uuid.UUID) (*simplecms.Content, error) {
	return r.getContentWhere(ctx, `c.user_id = $1 AND c.status = 'New'`, userID)
}

func (r *Repository) UpdateContent(ctx context.Context, content *simplecms.Content) error {
	query := `
		UPDATE content SET
			title = $2, rich_content = $3, asset_url = $4, slug = $5,
			category_id = $6, status = $7, updated_on = $8
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		content.ID, content.Title, content.RichContent, content.AssetURL,
		content.Slug, content.CategoryID, content.Status, content.UpdatedOn)
	if err != nil {
		return mapError("update content", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrContentNotFound
	}

	return r.replaceContentTags(ctx, content)
}

func (r *Repository) replaceContentTags(ctx context.Context, content *simplecms.Content) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM content_tag WHERE content_id = $1`, content.ID); err != nil {
		return mapError("replace content tags", err)
	}
	for _, t := range content.Tags {
		_, err := r.db.Exec(ctx,
			`INSERT INTO content_tag (content_id, tag_id) VALUES ($1, $2)`,
			content.ID, t.ID)
		if err != nil {
			return mapError("replace content tags", err)
		}
	}
	return nil
}

func (r *Repository) HasTitleOrSlugConflict(ctx context.Context, userID, excludeID uuid.UUID, title, slug string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM content
			WHERE user_id = $1 AND id <> $2 AND status <> 'Deleted'
			  AND (($3 <> '' AND title = $3) OR ($4 <> '' AND slug = $4))
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, excludeID, title, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("conflict probe: %w", err)
	}
	return exists, nil
}

func (r *Repository) ListContents(ctx context.Context, filter simplecms.ContentFilter) ([]*simplecms.Content, error) {
	var (
		where = []string{`c.status <> 'Deleted'`}
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.UserID != nil {
		where = append(where, `c.user_id = `+arg(*filter.UserID))
	}
	if filter.Status != nil {
		where = append(where, `c.status = `+arg(*filter.Status))
	}
	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		where = append(where, `(c.title LIKE `+p+` OR c.rich_content LIKE `+p+`)`)
	}
	if filter.Category != "" {
		where = append(where, `cat.name = `+arg(filter.Category))
	}
	if filter.Tag != "" {
		where = append(where, `EXISTS (
			SELECT 1 FROM content_tag ct JOIN tag t ON t.id = ct.tag_id
			WHERE ct.content_id = c.id AND t.name = `+arg(filter.Tag)+`)`)
	}
	if filter.FromDate != nil {
		where = append(where, `c.created_on >= `+arg(*filter.FromDate))
	}
	if filter.ToDate != nil {
		where = append(where, `c.created_on <= `+arg(*filter.ToDate))
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	query := `
		SELECT ` + contentColumns + `
		FROM content c
		LEFT JOIN category cat ON cat.id = c.category_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY c.created_on DESC
		OFFSET ` + arg((page-1)*pageSize) + ` LIMIT ` + arg(pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contents: %w", err)
	}
	defer rows.Close()

	var contents []*simplecms.Content
	for rows.Next() {
		content, err := scanContent(rows)
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadTags(ctx, contents); err != nil {
		return nil, err
	}
	return contents, nil
}

// loadTags eager-loads the tag associations for a batch of content records.
func (r *Repository) loadTags(ctx context.Context, contents []*simplecms.Content) error {
	if len(contents) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, 0, len(contents))
	byID := make(map[uuid.UUID]*simplecms.Content, len(contents))
	for _, c := range contents {
		ids = append(ids, c.ID)
		byID[c.ID] = c
	}

	query := `
		SELECT ct.content_id, t.id, t.user_id, t.name
		FROM content_tag ct
		JOIN tag t ON t.id = ct.tag_id
		WHERE ct.content_id = ANY($1)
		ORDER BY t.name`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("load tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			contentID uuid.UUID
			tag       simplecms.Tag
		)
		if err := rows.Scan(&contentID, &tag.ID, &tag.UserID, &tag.Name); err != nil {
			return err
		}
		if c, ok := byID[contentID]; ok {
			c.Tags = append(c.Tags, tag)
		}
	}
	return rows.Err()
}

// Category operations

func (r *Repository) CreateCategory(ctx context.Context, category *simplecms.Category) error {
	query := `INSERT INTO category (id, user_id, name, description) VALUES ($1, $2, $3, $4)`
	if _, err := r.db.Exec(ctx, query, category.ID, category.UserID, category.Name, category.Description); err != nil {
		return mapError("create category", err)
	}
	return nil
}

func (r *Repository) GetCategory(ctx context.Context, id uuid.UUID) (*simplecms.Category, error) {
	query := `SELECT id, user_id, name, description FROM category WHERE id = $1`

	var category simplecms.Category
	err := r.db.QueryRow(ctx, query, id).Scan(
		&category.ID, &category.UserID, &category.Name, &category.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *Repository) GetCategoryByName(ctx context.Context, userID uuid.UUID, name string) (*simplecms.Category, error) {
	query := `SELECT id, user_id, name, description FROM category WHERE user_id = $1 AND name = $2`

	var category simplecms.Category
	err := r.db.QueryRow(ctx, query, userID, name).Scan(
		&category.ID, &category.UserID, &category.Name, &category.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *Repository) ListCategories(ctx context.Context, userID uuid.UUID) ([]*simplecms.Category, error) {
	query := `SELECT id, user_id, name, description FROM category WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*simplecms.Category
	for rows.Next() {
		var category simplecms.Category
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &category.Description); err != nil {
			return nil, err
		}
		categories = append(categories, &category)
	}
	return categories, rows.Err()
}

func (r *Repository) UpdateCategory(ctx context.Context, category *simplecms.Category) error {
	query := `UPDATE category SET name = $2, description = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Description)
	if err != nil {
		return mapError("update category", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrCategoryNotFound
	}
	return nil
}

func (r *Repository) DeleteCategory(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM category WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError("delete category", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrCategoryNotFound
	}
	return nil
}

// Tag operations

func (r *Repository) CreateTag(ctx context.Context, t *simplecms.Tag) error {
	query := `INSERT INTO tag (id, user_id, name) VALUES ($1, $2, $3)`
	if _, err := r.db.Exec(ctx, query, t.ID, t.UserID, t.Name); err != nil {
		return mapError("create tag", err)
	}
	return nil
}

func (r *Repository) GetTag(ctx context.Context, id uuid.UUID) (*simplecms.Tag, error) {
	query := `SELECT id, user_id, name FROM tag WHERE id = $1`

	var t simplecms.Tag
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.UserID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrTagNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) GetTagByName(ctx context.Context, userID uuid.UUID, name string) (*simplecms.Tag, error) {
	query := `SELECT id, user_id, name FROM tag WHERE user_id = $1 AND name = $2`

	var t simplecms.Tag
	err := r.db.QueryRow(ctx, query, userID, name).Scan(&t.ID, &t.UserID, &t.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrTagNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *Repository) ListTags(ctx context.Context, userID uuid.UUID) ([]*simplecms.Tag, error) {
	query := `SELECT id, user_id, name FROM tag WHERE user_id = $1 ORDER BY name`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*simplecms.Tag
	for rows.Next() {
		var t simplecms.Tag
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, &t)
	}
	return tags, rows.Err()
}

func (r *Repository) UpdateTag(ctx context.Context, t *simplecms.Tag) error {
	tag, err := r.db.Exec(ctx, `UPDATE tag SET name = $2 WHERE id = $1`, t.ID, t.Name)
	if err != nil {
		return mapError("update tag", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrTagNotFound
	}
	return nil
}

func (r *Repository) DeleteTag(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM tag WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError("delete tag", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrTagNotFound
	}
	return nil
}

// API key operations

func (r *Repository) CreateAPIKey(ctx context.Context, key *simplecms.APIKey) error {
	query := `
		INSERT INTO api_key (id, user_id, key, description, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		key.ID, key.UserID, key.Key, key.Description, key.IsActive, key.CreatedAt)
	if err != nil {
		return mapError("create api key", err)
	}
	return nil
}

func (r *Repository) GetActiveAPIKey(ctx context.Context, key string) (*simplecms.APIKey, error) {
	query := `
		SELECT id, user_id, key, description, is_active, created_at
		FROM api_key WHERE key = $1 AND is_active`

	var apiKey simplecms.APIKey
	err := r.db.QueryRow(ctx, query, key).Scan(
		&apiKey.ID, &apiKey.UserID, &apiKey.Key, &apiKey.Description,
		&apiKey.IsActive, &apiKey.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplecms.ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &apiKey, nil
}

func (r *Repository) ListAPIKeys(ctx context.Context, userID uuid.UUID) ([]*simplecms.APIKey, error) {
	query := `
		SELECT id, user_id, key, description, is_active, created_at
		FROM api_key WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*simplecms.APIKey
	for rows.Next() {
		var apiKey simplecms.APIKey
		if err := rows.Scan(&apiKey.ID, &apiKey.UserID, &apiKey.Key,
			&apiKey.Description, &apiKey.IsActive, &apiKey.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, &apiKey)
	}
	return keys, rows.Err()
}

func (r *Repository) DeleteAPIKey(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM api_key WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError("delete api key", err)
	}
	if tag.RowsAffected() == 0 {
		return simplecms.ErrAPIKeyNotFound
	}
	return nil
}
