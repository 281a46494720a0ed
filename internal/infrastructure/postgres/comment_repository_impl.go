package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(pool *pgxpool.Pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

const commentColumns = `c.id, c.content, c.post_id, c.author_id, c.created_at`

func scanComment(row pgx.Row, c *entity.Comment, extra ...any) error {
	dest := append([]any{&c.ID, &c.Content, &c.PostID, &c.AuthorID, &c.CreatedAt}, extra...)
	return row.Scan(dest...)
}

func (r *CommentRepository) Create(ctx context.Context, c *entity.Comment) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO comments (content, post_id, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, c.Content, c.PostID, c.AuthorID)

	return translateInsert(row.Scan(&c.ID, &c.CreatedAt))
}

func (r *CommentRepository) GetByID(ctx context.Context, id string) (*entity.Comment, error) {
	c := &entity.Comment{}
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+commentColumns+` FROM comments c WHERE c.id = $1`, id)
	if err := scanComment(row, c); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id string) (*entity.Comment, error) {
	c := &entity.Comment{}
	row := conn(ctx, r.pool).QueryRow(ctx, `
		DELETE FROM comments c
		WHERE c.id = $1
		RETURNING `+commentColumns, id)
	if err := scanComment(row, c); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

func (r *CommentRepository) DeleteByPost(ctx context.Context, postID string) ([]string, error) {
	return r.deleteReturningIDs(ctx, `DELETE FROM comments WHERE post_id = $1 RETURNING id`, postID)
}

func (r *CommentRepository) DeleteByUser(ctx context.Context, userID string) ([]string, error) {
	return r.deleteReturningIDs(ctx, `
		DELETE FROM comments
		WHERE author_id = $1
		   OR post_id IN (SELECT id FROM posts WHERE author_id = $1)
		RETURNING id
	`, userID)
}

func (r *CommentRepository) deleteReturningIDs(ctx context.Context, sql string, arg string) ([]string, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, sql, arg)
	if err != nil {
		return nil, translate(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

var _ repository.CommentRepository = (*CommentRepository)(nil)
