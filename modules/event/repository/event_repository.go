package repository

import (
	"context"
	"database/sql"
	"time"

	"calendar-service/core/database"
	"calendar-service/core/logger"
	"calendar-service/modules/event/entity"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var eventColumns = []string{
	"id", "title", "description", "start_at", "end_at", "owner", "team",
	"visibility", "channel", "color", "alert", "recurrence", "created_at", "updated_at",
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type eventRepository struct {
	db database.Database
}

func NewEventRepository(db database.Database) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO calendar_events (id, title, description, start_at, end_at, owner, team,
			visibility, channel, color, alert, recurrence, created_at, updated_at)
		VALUES (:id, :title, :description, :start_at, :end_at, :owner, :team,
			:visibility, :channel, :color, :alert, :recurrence, :created_at, :updated_at)
		RETURNING created_at
	`
	rows, err := r.db.NamedQueryContext(ctx, query, event)
	if err != nil {
		logger.Error("EventRepository:Create", err)
		return err
	}
	defer rows.Close()

	if rows.Next() {
		return rows.Scan(&event.CreatedAt)
	}
	return rows.Err()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	query, args, err := psql.Select(eventColumns...).From("calendar_events").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	var event entity.Event
	if err := r.db.GetContext(ctx, &event, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		logger.Error("EventRepository:GetByID", err)
		return nil, err
	}
	return &event, nil
}

func (r *eventRepository) Update(ctx context.Context, id string, fn func(*entity.Event) error) (*entity.Event, error) {
	var updated *entity.Event
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := psql.Select(eventColumns...).From("calendar_events").
			Where(sq.Eq{"id": id}).Suffix("FOR UPDATE").ToSql()
		if err != nil {
			return err
		}

		var current entity.Event
		if err := tx.GetContext(ctx, &current, query, args...); err != nil {
			if err == sql.ErrNoRows {
				return nil
			}
			return err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		next.ID = current.ID
		next.UpdatedAt = time.Now().UTC()

		update, uargs, err := psql.Update("calendar_events").SetMap(map[string]any{
			"title":       next.Title,
			"description": next.Description,
			"start_at":    next.Start,
			"end_at":      next.End,
			"team":        next.Team,
			"visibility":  next.Visibility,
			"channel":     next.Channel,
			"color":       next.Color,
			"alert":       next.Alert,
			"recurrence":  next.Recurrence,
			"updated_at":  next.UpdatedAt,
		}).Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, update, uargs...); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *eventRepository) Delete(ctx context.Context, id string) (bool, error) {
	var deleted []string
	err := r.db.SelectContext(ctx, &deleted, `DELETE FROM calendar_events WHERE id = $1 RETURNING id`, id)
	if err != nil {
		logger.Error("EventRepository:Delete", err)
		return false, err
	}
	return len(deleted) > 0, nil
}

func (r *eventRepository) List(ctx context.Context, filter EventFilter) ([]entity.Event, error) {
	builder := psql.Select(eventColumns...).From("calendar_events")

	if !filter.AllUsers {
		builder = builder.Where(sq.Or{
			sq.Eq{"owner": nonNil(filter.Owners)},
			sq.Eq{"id": nonNil(filter.IDs)},
		})
	}
	if filter.Team != "" {
		builder = builder.Where(sq.Eq{"team": filter.Team})
	}
	if !filter.WindowEnd.IsZero() {
		builder = builder.Where(sq.Lt{"start_at": filter.WindowEnd})
	}
	if !filter.WindowStart.IsZero() {
		builder = builder.Where(sq.Or{
			sq.NotEq{"recurrence": ""},
			sq.Gt{"end_at": filter.WindowStart},
		})
	}

	query, args, err := builder.OrderBy("start_at", "id").ToSql()
	if err != nil {
		return nil, err
	}

	events := []entity.Event{}
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		logger.Error("EventRepository:List", err)
		return nil, err
	}
	return events, nil
}

// nonNil keeps squirrel from rendering a nil slice as IS NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
