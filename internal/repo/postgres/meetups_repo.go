package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/geocoder89/meetuphub/internal/domain/meetup"
	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/geocoder89/meetuphub/internal/domain/registration"
	"github.com/geocoder89/meetuphub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MeetupsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewMeetupsRepo(pool *pgxpool.Pool, prom *observability.Prom) *MeetupsRepo {
	return &MeetupsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *MeetupsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create inserts the meetup row and its registration association in one
// transaction. The join table carries a position column so the reconciled
// insertion order survives the round-trip.
func (repo *MeetupsRepo) Create(ctx context.Context, m meetup.Meetup) (saved meetup.Meetup, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = repo.observe("meetups.create", func() error {
		return tx.QueryRow(ctx, `
			INSERT INTO meetups (event, meetup_date, registration_attribute)
			VALUES ($1, $2, $3)
			RETURNING id
		`, m.Event, m.MeetupDate, m.Attribute).Scan(&m.ID)
	})

	if err != nil {
		if violatedConstraint(err) == "meetups_event_date_uniq" {
			err = meetup.ErrAlreadyExists
		}

		return
	}

	err = repo.replaceAssociationTx(ctx, tx, m.ID, m.Registrations, false)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		return
	}

	saved = m
	return
}

func (repo *MeetupsRepo) GetByID(ctx context.Context, id int64) (meetup.Meetup, error) {
	var m meetup.Meetup

	err := repo.observe("meetups.get_by_id", func() error {
		return repo.pool.QueryRow(ctx, `
			SELECT id, event, meetup_date, registration_attribute
			FROM meetups
			WHERE id = $1
		`, id).Scan(&m.ID, &m.Event, &m.MeetupDate, &m.Attribute)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meetup.Meetup{}, meetup.ErrNotFound
		}

		return meetup.Meetup{}, err
	}

	byMeetup, err := repo.loadAssociations(ctx, []int64{m.ID})

	if err != nil {
		return meetup.Meetup{}, err
	}

	m.Registrations = byMeetup[m.ID]

	if m.Registrations == nil {
		m.Registrations = []registration.Registration{}
	}

	return m, nil
}

// Update rewrites the row and replaces the whole association set.
func (repo *MeetupsRepo) Update(ctx context.Context, m meetup.Meetup) (updated meetup.Meetup, err error) {
	tx, err := repo.pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return
	}

	defer func() { _ = tx.Rollback(ctx) }()

	err = repo.observe("meetups.update", func() error {
		return tx.QueryRow(ctx, `
			UPDATE meetups
				SET event = $2,
						meetup_date = $3,
						registration_attribute = $4
			WHERE id = $1
			RETURNING id
		`, m.ID, m.Event, m.MeetupDate, m.Attribute).Scan(&m.ID)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = meetup.ErrNotFound
			return
		}

		if violatedConstraint(err) == "meetups_event_date_uniq" {
			err = meetup.ErrAlreadyExists
		}

		return
	}

	err = repo.replaceAssociationTx(ctx, tx, m.ID, m.Registrations, true)

	if err != nil {
		return
	}

	err = tx.Commit(ctx)

	if err != nil {
		return
	}

	updated = m
	return
}

func (repo *MeetupsRepo) Delete(ctx context.Context, id int64) error {
	return repo.observe("meetups.delete", func() error {
		// join rows go with the meetup via ON DELETE CASCADE
		tag, err := repo.pool.Exec(ctx, `DELETE FROM meetups WHERE id = $1`, id)

		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return meetup.ErrNotFound
		}

		return nil
	})
}

func (repo *MeetupsRepo) FindByEventAndDate(ctx context.Context, event string, date time.Time) (meetup.Meetup, error) {
	var m meetup.Meetup

	err := repo.observe("meetups.find_by_event_and_date", func() error {
		return repo.pool.QueryRow(ctx, `
			SELECT id, event, meetup_date, registration_attribute
			FROM meetups
			WHERE LOWER(event) = LOWER($1) AND meetup_date = $2
		`, event, date).Scan(&m.ID, &m.Event, &m.MeetupDate, &m.Attribute)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return meetup.Meetup{}, meetup.ErrNotFound
		}

		return meetup.Meetup{}, err
	}

	m.Registrations = []registration.Registration{}

	return m, nil
}

func (repo *MeetupsRepo) Find(ctx context.Context, filter meetup.Filter, req page.Request) (page.Page[meetup.Meetup], error) {
	baseQuery := `
		SELECT id,
			event,
			meetup_date,
			registration_attribute,
			COUNT(*) OVER() AS total
		FROM meetups
	`

	var conds []string
	var args []interface{}

	argsPosition := 1

	if filter.Event != nil {
		conds = append(conds, fmt.Sprintf("event ILIKE $%d", argsPosition))
		args = append(args, "%"+*filter.Event+"%")
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

	query += fmt.Sprintf(" ORDER BY id ASC LIMIT $%d OFFSET $%d", argsPosition, argsPosition+1)
	args = append(args, req.Size, req.Offset())

	var rows pgx.Rows

	err := repo.observe("meetups.find", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, query, args...)
		return qerr
	})

	if err != nil {
		return page.Page[meetup.Meetup]{}, err
	}

	defer rows.Close()

	out := make([]meetup.Meetup, 0, req.Size)
	ids := make([]int64, 0, req.Size)
	total := 0

	for rows.Next() {
		var m meetup.Meetup
		var t int

		if err := rows.Scan(&m.ID, &m.Event, &m.MeetupDate, &m.Attribute, &t); err != nil {
			return page.Page[meetup.Meetup]{}, err
		}

		total = t
		m.Registrations = []registration.Registration{}
		out = append(out, m)
		ids = append(ids, m.ID)
	}

	if err := rows.Err(); err != nil {
		return page.Page[meetup.Meetup]{}, err
	}

	byMeetup, err := repo.loadAssociations(ctx, ids)

	if err != nil {
		return page.Page[meetup.Meetup]{}, err
	}

	for i := range out {
		if regs, ok := byMeetup[out[i].ID]; ok {
			out[i].Registrations = regs
		}
	}

	return page.New(out, total, req), nil
}

// loadAssociations fetches the registrations for the given meetup ids in a
// single query, keyed by meetup and ordered by stored position.
func (repo *MeetupsRepo) loadAssociations(ctx context.Context, ids []int64) (map[int64][]registration.Registration, error) {
	byMeetup := make(map[int64][]registration.Registration, len(ids))

	if len(ids) == 0 {
		return byMeetup, nil
	}

	var rows pgx.Rows

	err := repo.observe("meetups.load_associations", func() error {
		var qerr error
		rows, qerr = repo.pool.Query(ctx, `
			SELECT mr.meetup_id, r.id, r.name, r.email, r.registration_attribute, r.version, r.date_of_registration
			FROM meetup_registrations mr
			JOIN registrations r ON r.id = mr.registration_id
			WHERE mr.meetup_id = ANY($1)
			ORDER BY mr.meetup_id ASC, mr.position ASC
		`, ids)
		return qerr
	})

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var meetupID int64
		var r registration.Registration

		if err := rows.Scan(&meetupID, &r.ID, &r.Name, &r.Email, &r.Attribute, &r.Version, &r.DateOfRegistration); err != nil {
			return nil, err
		}

		byMeetup[meetupID] = append(byMeetup[meetupID], r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return byMeetup, nil
}

func (repo *MeetupsRepo) replaceAssociationTx(ctx context.Context, tx pgx.Tx, meetupID int64, regs []registration.Registration, clear bool) error {
	return repo.observe("meetups.replace_association", func() error {
		if clear {
			if _, err := tx.Exec(ctx, `DELETE FROM meetup_registrations WHERE meetup_id = $1`, meetupID); err != nil {
				return err
			}
		}

		for pos, r := range regs {
			if _, err := tx.Exec(ctx, `
				INSERT INTO meetup_registrations (meetup_id, registration_id, position)
				VALUES ($1, $2, $3)
			`, meetupID, r.ID, pos); err != nil {
				return err
			}
		}

		return nil
	})
}
