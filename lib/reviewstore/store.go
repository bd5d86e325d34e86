package reviewstore

import (
	"context"
	"database/sql"
	_ "embed"
	"time"

	"reviewscrape/lib/chrono"
	"reviewscrape/lib/scrapers/reviews"
	"reviewscrape/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	_ "modernc.org/sqlite"
)

var tracer = telemetry.Tracer("reviewscrape.lib.reviewstore")

//go:embed schema.sql
var Schema string

// Run is one archived invocation of the scraper.
type Run struct {
	ID          int64
	Company     string
	Source      string
	Start       chrono.Date
	End         chrono.Date
	CreatedAt   time.Time
	ReviewCount int
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (and creates when missing) the sqlite archive at `path`,
// ":memory:" works too.
func Open(ctx context.Context, path string) (Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	// one connection so ":memory:" databases are shared between queries
	db.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = db.ExecContext(ctx, "pragma journal_mode = wal")
		if err != nil {
			db.Close()
			return Store{}, err
		}
	}

	_, err = db.ExecContext(ctx, "pragma foreign_keys = on")
	if err != nil {
		db.Close()
		return Store{}, err
	}
	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return Store{}, err
	}
	return Store{db: db, now: time.Now}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Save archives a report and its reviews in a single transaction.
func (s Store) Save(ctx context.Context, report reviews.Report) (int64, error) {
	ctx, span := tracer.Start(ctx, "Save")
	defer span.End()
	span.SetAttributes(
		attribute.String("company", report.Company),
		attribute.Int("reviews", len(report.Reviews)),
	)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(
		ctx,
		"insert into runs(company, source, start_date, end_date, created_at) values (?, ?, ?, ?, ?)",
		report.Company, report.Source, report.Start.String(), report.End.String(), s.now().Unix(),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	runId, err := res.LastInsertId()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	for i, r := range report.Reviews {
		var date sql.NullString
		if r.Date != nil {
			date = sql.NullString{String: r.Date.String(), Valid: true}
		}
		_, err := tx.ExecContext(
			ctx,
			`insert into reviews(run_id, position, source, title, description, review_date, rating, reviewer)
			values (?, ?, ?, ?, ?, ?, ?, ?)`,
			runId, i, string(r.Source), r.Title, r.Description,
			date, nullable(r.Additional.Rating), nullable(r.Additional.Reviewer),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return 0, err
		}
	}

	err = tx.Commit()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}
	return runId, nil
}

// Runs lists every archived run, newest first.
func (s Store) Runs(ctx context.Context) ([]Run, error) {
	ctx, span := tracer.Start(ctx, "Runs")
	defer span.End()

	rows, err := s.db.QueryContext(ctx, `
		select runs.id, runs.company, runs.source, runs.start_date, runs.end_date, runs.created_at, count(reviews.run_id)
		from runs
		left join reviews on reviews.run_id = runs.id
		group by runs.id
		order by runs.id desc`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var run Run
		var start, end string
		var createdAt int64
		err := rows.Scan(&run.ID, &run.Company, &run.Source, &start, &end, &createdAt, &run.ReviewCount)
		if err != nil {
			return nil, err
		}
		err = run.Start.UnmarshalText([]byte(start))
		if err != nil {
			return nil, err
		}
		err = run.End.UnmarshalText([]byte(end))
		if err != nil {
			return nil, err
		}
		run.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Reviews returns the reviews archived with run `runId`, in report order.
func (s Store) Reviews(ctx context.Context, runId int64) ([]reviews.Review, error) {
	ctx, span := tracer.Start(ctx, "Reviews")
	defer span.End()
	span.SetAttributes(attribute.Int64("run_id", runId))

	rows, err := s.db.QueryContext(
		ctx,
		"select source, title, description, review_date, rating, reviewer from reviews where run_id = ? order by position",
		runId,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	out := []reviews.Review{}
	for rows.Next() {
		var r reviews.Review
		var source string
		var date, rating, reviewer sql.NullString
		err := rows.Scan(&source, &r.Title, &r.Description, &date, &rating, &reviewer)
		if err != nil {
			return nil, err
		}
		r.Source = reviews.Source(source)
		if date.Valid {
			var d chrono.Date
			err = d.UnmarshalText([]byte(date.String))
			if err != nil {
				return nil, err
			}
			r.Date = &d
		}
		if rating.Valid {
			r.Additional.Rating = &rating.String
		}
		if reviewer.Valid {
			r.Additional.Reviewer = &reviewer.String
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
