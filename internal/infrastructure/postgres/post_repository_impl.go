package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

const postColumns = `p.id, p.title, COALESCE(p.content, ''), p.published, p.author_id, p.created_at`

func scanPost(row pgx.Row, p *entity.Post, extra ...any) error {
	dest := append([]any{&p.ID, &p.Title, &p.Content, &p.Published, &p.AuthorID, &p.CreatedAt}, extra...)
	return row.Scan(dest...)
}

func queryPosts(ctx context.Context, q querier, sql string, args ...any) ([]entity.Post, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Post, error) {
		var p entity.Post
		err := scanPost(row, &p)
		return p, err
	})
}

func (r *PostRepository) Create(ctx context.Context, p *entity.Post) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO posts (title, content, published, author_id)
		VALUES ($1, NULLIF($2, ''), $3, $4)
		RETURNING id, created_at
	`, p.Title, p.Content, p.Published, p.AuthorID)

	return translateInsert(row.Scan(&p.ID, &p.CreatedAt))
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*entity.Post, error) {
	p := &entity.Post{}
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+postColumns+` FROM posts p WHERE p.id = $1`, id)
	if err := scanPost(row, p); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *PostRepository) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, id).Scan(&ok)
	return exists(ok, err)
}

func (r *PostRepository) List(ctx context.Context, limit int) ([]entity.Post, error) {
	q := conn(ctx, r.pool)

	// LIMIT NULL returns every row
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := q.Query(ctx, `
		SELECT `+postColumns+`, `+userColumns+`
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1
	`, lim)
	if err != nil {
		return nil, err
	}
	posts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Post, error) {
		var p entity.Post
		a := &entity.User{}
		err := scanPost(row, &p, &a.ID, &a.Email, &a.Name, &a.CreatedAt)
		p.Author = a
		return p, err
	})
	if err != nil || len(posts) == 0 {
		return posts, err
	}

	ids := make([]string, len(posts))
	index := make(map[string]int, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
		index[posts[i].ID] = i
		posts[i].Comments = []entity.Comment{}
	}
	rows, err = q.Query(ctx, `
		SELECT `+commentColumns+`, `+userColumns+`
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ANY($1)
		ORDER BY c.created_at DESC, c.id DESC
	`, ids)
	if err != nil {
		return nil, err
	}
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Comment, error) {
		var c entity.Comment
		a := &entity.User{}
		err := scanComment(row, &c, &a.ID, &a.Email, &a.Name, &a.CreatedAt)
		c.Author = a
		return c, err
	})
	if err != nil {
		return nil, err
	}
	for _, c := range comments {
		i := index[c.PostID]
		posts[i].Comments = append(posts[i].Comments, c)
		posts[i].CommentCount++
	}
	return posts, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) (*entity.Post, error) {
	p := &entity.Post{}
	row := conn(ctx, r.pool).QueryRow(ctx, `
		DELETE FROM posts p
		WHERE p.id = $1
		RETURNING `+postColumns, id)
	if err := scanPost(row, p); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (r *PostRepository) DeleteByAuthor(ctx context.Context, authorID string) ([]string, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `DELETE FROM posts WHERE author_id = $1 RETURNING id`, authorID)
	if err != nil {
		return nil, translate(err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, translate(err)
	}
	return ids, nil
}

var _ repository.PostRepository = (*PostRepository)(nil)
