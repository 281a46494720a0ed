package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-ddd-postboard/internal/domain/entity"
	"github.com/oksasatya/go-ddd-postboard/internal/domain/repository"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `u.id, u.email, COALESCE(u.name, ''), u.created_at`

func scanUser(row pgx.Row, u *entity.User, extra ...any) error {
	dest := append([]any{&u.ID, &u.Email, &u.Name, &u.CreatedAt}, extra...)
	return row.Scan(dest...)
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO users (email, name)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id, created_at
	`, u.Email, u.Name)

	return translateInsert(row.Scan(&u.ID, &u.CreatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := conn(ctx, r.pool).QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id)
	if err := scanUser(row, u); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

func (r *UserRepository) GetDetail(ctx context.Context, id string, commentLimit int) (*entity.User, error) {
	q := conn(ctx, r.pool)
	u := &entity.User{}
	row := q.QueryRow(ctx, `
		SELECT `+userColumns+`,
			(SELECT count(*) FROM posts p WHERE p.author_id = u.id),
			(SELECT count(*) FROM comments c WHERE c.author_id = u.id)
		FROM users u
		WHERE u.id = $1
	`, id)
	if err := scanUser(row, u, &u.Counts.Posts, &u.Counts.Comments); err != nil {
		return nil, translate(err)
	}

	posts, err := queryPosts(ctx, q, `
		SELECT `+postColumns+` FROM posts p
		WHERE p.author_id = $1
		ORDER BY p.created_at DESC, p.id DESC
	`, id)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []entity.Post{}
	}
	u.Posts = posts

	var limit *int
	if commentLimit > 0 {
		limit = &commentLimit
	}
	rows, err := q.Query(ctx, `
		SELECT `+commentColumns+` FROM comments c
		WHERE c.author_id = $1
		ORDER BY c.created_at DESC, c.id DESC
		LIMIT $2
	`, id, limit)
	if err != nil {
		return nil, err
	}
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Comment, error) {
		var c entity.Comment
		err := scanComment(row, &c)
		return c, err
	})
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []entity.Comment{}
	}
	u.Comments = comments
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]entity.User, error) {
	q := conn(ctx, r.pool)
	rows, err := q.Query(ctx, `
		SELECT `+userColumns+`,
			(SELECT count(*) FROM posts p WHERE p.author_id = u.id),
			(SELECT count(*) FROM comments c WHERE c.author_id = u.id)
		FROM users u
		ORDER BY u.created_at DESC, u.id DESC
	`)
	if err != nil {
		return nil, err
	}
	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.User, error) {
		var u entity.User
		err := scanUser(row, &u, &u.Counts.Posts, &u.Counts.Comments)
		return u, err
	})
	if err != nil || len(users) == 0 {
		return users, err
	}

	ids := make([]string, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	posts, err := queryPosts(ctx, q, `
		SELECT `+postColumns+` FROM posts p
		WHERE p.author_id = ANY($1)
		ORDER BY p.created_at DESC, p.id DESC
	`, ids)
	if err != nil {
		return nil, err
	}
	attachPosts(users, posts)
	return users, nil
}

// attachPosts hands each user their posts in the given order; users without posts get
// an empty slice.
func attachPosts(users []entity.User, posts []entity.Post) {
	byAuthor := make(map[string][]entity.Post, len(users))
	for _, p := range posts {
		byAuthor[p.AuthorID] = append(byAuthor[p.AuthorID], p)
	}
	for i := range users {
		own := byAuthor[users[i].ID]
		if own == nil {
			own = []entity.Post{}
		}
		users[i].Posts = own
	}
}

func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := conn(ctx, r.pool).QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id).Scan(&ok)
	return exists(ok, err)
}

func (r *UserRepository) Delete(ctx context.Context, id string) (*entity.User, error) {
	u := &entity.User{}
	row := conn(ctx, r.pool).QueryRow(ctx, `
		DELETE FROM users u
		WHERE u.id = $1
		RETURNING `+userColumns, id)
	if err := scanUser(row, u); err != nil {
		return nil, translate(err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
