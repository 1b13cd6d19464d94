package db

import "context"

// Service はservicesテーブルの1行を表す。公開ページに表示するサービス紹介。
type Service struct {
	ID          string
	Title       string
	Description string
	Price       float64
}

// Testimonial はtestimonialsテーブルの1行を表す。利用者の声。
type Testimonial struct {
	ID        string
	Email     string
	Name      string
	Rating    int
	Message   string
	CreatedAt string
}

// Feature はfeaturesテーブルの1行を表す。公開ページに表示する機能紹介。
type Feature struct {
	ID          string
	Title       string
	Description string
	Icon        string
}

// CreateServiceParams はCreateServiceのパラメータ。
type CreateServiceParams struct {
	ID          string
	Title       string
	Description string
	Price       float64
}

// CreateService はサービス紹介を作成する。
func (q *Queries) CreateService(ctx context.Context, p CreateServiceParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO services (id, title, description, price) VALUES (?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.Price)
	return err
}

// ListServices はサービス紹介一覧を取得する。
func (q *Queries) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, title, description, price FROM services ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var services []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Price); err != nil {
			return nil, err
		}
		services = append(services, s)
	}
	return services, rows.Err()
}

// CreateTestimonialParams はCreateTestimonialのパラメータ。
type CreateTestimonialParams struct {
	ID      string
	Email   string
	Name    string
	Rating  int
	Message string
}

// CreateTestimonial は利用者の声を作成する。
func (q *Queries) CreateTestimonial(ctx context.Context, p CreateTestimonialParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO testimonials (id, email, name, rating, message) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.Email, p.Name, p.Rating, p.Message)
	return err
}

// ListTestimonials は利用者の声一覧を新しい順に取得する。
func (q *Queries) ListTestimonials(ctx context.Context) ([]Testimonial, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, email, name, rating, message, created_at FROM testimonials ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var testimonials []Testimonial
	for rows.Next() {
		var t Testimonial
		if err := rows.Scan(&t.ID, &t.Email, &t.Name, &t.Rating, &t.Message, &t.CreatedAt); err != nil {
			return nil, err
		}
		testimonials = append(testimonials, t)
	}
	return testimonials, rows.Err()
}

// CreateFeatureParams はCreateFeatureのパラメータ。
type CreateFeatureParams struct {
	ID          string
	Title       string
	Description string
	Icon        string
}

// CreateFeature は機能紹介を作成する。
func (q *Queries) CreateFeature(ctx context.Context, p CreateFeatureParams) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO features (id, title, description, icon) VALUES (?, ?, ?, ?)`,
		p.ID, p.Title, p.Description, p.Icon)
	return err
}

// ListFeatures は機能紹介一覧を取得する。
func (q *Queries) ListFeatures(ctx context.Context) ([]Feature, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, title, description, icon FROM features ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var features []Feature
	for rows.Next() {
		var f Feature
		if err := rows.Scan(&f.ID, &f.Title, &f.Description, &f.Icon); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}
