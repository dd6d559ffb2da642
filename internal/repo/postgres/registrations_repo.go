package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/geocoder89/meetuphub/internal/domain/registration"
	"github.com/geocoder89/meetuphub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *RegistrationsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (repo *RegistrationsRepo) Create(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	err := repo.observe("registrations.create", func() error {
		return repo.pool.QueryRow(ctx, `
			INSERT INTO registrations (name, email, registration_attribute, version, date_of_registration)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, reg.Name, reg.Email, reg.Attribute, reg.Version, reg.DateOfRegistration).Scan(&reg.ID)
	})

	if err != nil {
		// unique index backstop for two writers racing the pre-check
		if violatedConstraint(err) == "registrations_email_uniq" {
			return registration.Registration{}, registration.ErrEmailAlreadyExists
		}

		return registration.Registration{}, err
	}

	return reg, nil
}

func (repo *RegistrationsRepo) GetByID(ctx context.Context, id int64) (reg registration.Registration, err error) {
	err = repo.observe("registrations.get_by_id", func() error {
		return repo.pool.QueryRow(ctx, `
			SELECT id, name, email, registration_attribute, version, date_of_registration
			FROM registrations
			WHERE id = $1
		`, id).Scan(&reg.ID, &reg.Name, &reg.Email, &reg.Attribute, &reg.Version, &reg.DateOfRegistration)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = registration.ErrNotFound
		}

		reg = registration.Registration{}
		return
	}

	return
}

func (repo *RegistrationsRepo) Update(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	err := repo.observe("registrations.update", func() error {
		return repo.pool.QueryRow(ctx, `
			UPDATE registrations
				SET name = $2,
						email = $3,
						registration_attribute = $4,
						version = $5,
						date_of_registration = $6
			WHERE id = $1
			RETURNING id
		`, reg.ID, reg.Name, reg.Email, reg.Attribute, reg.Version, reg.DateOfRegistration).Scan(&reg.ID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return registration.Registration{}, registration.ErrNotFound
		}

		if violatedConstraint(err) == "registrations_email_uniq" {
			return registration.Registration{}, registration.ErrEmailAlreadyExists
		}

		return registration.Registration{}, err
	}

	return reg, nil
}

func (repo *RegistrationsRepo) Delete(ctx context.Context, id int64) error {
	return repo.observe("registrations.delete", func() error {
		tag, err := repo.pool.Exec(ctx, `DELETE FROM registrations WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return registration.ErrNotFound
		}

		return nil
	})
}

func (repo *RegistrationsRepo) ExistsByEmail(ctx context.Context, email string) (exists bool, err error) {
	err = repo.observe("registrations.exists_by_email", func() error {
		return repo.pool.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM registrations WHERE LOWER(email) = LOWER($1))
		`, email).Scan(&exists)
	})

	return
}

func (repo *RegistrationsRepo) FindByEmail(ctx context.Context, email string) (reg registration.Registration, err error) {
	err = repo.observe("registrations.find_by_email", func() error {
		return repo.pool.QueryRow(ctx, `
			SELECT id, name, email, registration_attribute, version, date_of_registration
			FROM registrations
			WHERE LOWER(email) = LOWER($1)
		`, email).Scan(&reg.ID, &reg.Name, &reg.Email, &reg.Attribute, &reg.Version, &reg.DateOfRegistration)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = registration.ErrNotFound
		}

		reg = registration.Registration{}
		return
	}

	return
}

func (repo *RegistrationsRepo) FindByAttribute(ctx context.Context, attribute string) ([]registration.Registration, error) {
	var rows pgx.Rows

	err := repo.observe("registrations.find_by_attribute", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, `
			SELECT id, name, email, registration_attribute, version, date_of_registration
			FROM registrations
			WHERE LOWER(registration_attribute) = LOWER($1)
			ORDER BY id ASC
		`, attribute)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	return scanRegistrations(rows)
}

func (repo *RegistrationsRepo) Find(ctx context.Context, filter registration.Filter, req page.Request) (page.Page[registration.Registration], error) {
	baseQuery := `
		SELECT id,
			name,
			email,
			registration_attribute,
			version,
			date_of_registration,
			COUNT(*) OVER() AS total
		FROM registrations
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	// filtered conditional checks: unset fields are skipped entirely.
	if filter.Name != nil {
		conds = append(conds, fmt.Sprintf("name ILIKE $%d", argsPosition))
		args = append(args, "%"+*filter.Name+"%")
		argsPosition++
	}

	if filter.Email != nil {
		conds = append(conds, fmt.Sprintf("email ILIKE $%d", argsPosition))
		args = append(args, "%"+*filter.Email+"%")
		argsPosition++
	}

	if filter.Attribute != nil {
		conds = append(conds, fmt.Sprintf("registration_attribute ILIKE $%d", argsPosition))
		args = append(args, "%"+*filter.Attribute+"%")
		argsPosition++
	}

	query := baseQuery

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	// stable ordering for pagination
	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)
	args = append(args, req.Size, req.Offset())

	var rows pgx.Rows

	err := repo.observe("registrations.find", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return page.Page[registration.Registration]{}, err
	}

	defer rows.Close()

	out := make([]registration.Registration, 0, req.Size)
	total := 0

	for rows.Next() {
		var r registration.Registration
		var t int

		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Attribute, &r.Version, &r.DateOfRegistration, &t); err != nil {
			return page.Page[registration.Registration]{}, err
		}

		total = t
		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return page.Page[registration.Registration]{}, err
	}

	return page.New(out, total, req), nil
}

func scanRegistrations(rows pgx.Rows) ([]registration.Registration, error) {
	out := []registration.Registration{}

	for rows.Next() {
		var r registration.Registration

		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Attribute, &r.Version, &r.DateOfRegistration); err != nil {
			return nil, err
		}

		out = append(out, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}
