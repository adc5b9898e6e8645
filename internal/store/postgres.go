package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/confcentral/confcentral/internal/model"
	"github.com/confcentral/confcentral/internal/query"
)

// Postgres implements Store on a pgx connection pool. Hierarchical
// entity ownership is modelled with foreign-key columns and secondary
// indexes rather than ancestor keys.
type Postgres struct {
	db *pgxpool.Pool
}

// NewPostgres constructs the Postgres store.
func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

const conferenceColumns = `id, organizer_user_id, name, city, topics,
	start_date, end_date, month, max_attendees, seats_available, created_at`

const sessionColumns = `id, conference_id, organizer_user_id, name,
	speaker, type_of_session, start_time, created_at`

// validID reports whether the websafe key is a well-formed entity ID.
// Malformed keys are treated as unresolvable rather than as SQL errors.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConference(row rowScanner) (*model.Conference, error) {
	var c model.Conference
	err := row.Scan(&c.ID, &c.OrganizerUserID, &c.Name, &c.City, &c.Topics,
		&c.StartDate, &c.EndDate, &c.Month, &c.MaxAttendees, &c.SeatsAvailable, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanSession(row rowScanner) (*model.Session, error) {
	var s model.Session
	err := row.Scan(&s.ID, &s.ConferenceID, &s.OrganizerUserID, &s.Name,
		&s.Speaker, &s.TypeOfSession, &s.StartTime, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ── Profiles ─────────────────────────────────────────────────────────────

func (p *Postgres) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	var prof model.Profile
	err := p.db.QueryRow(ctx,
		`SELECT user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&prof.UserID, &prof.DisplayName, &prof.MainEmail, &prof.TeeShirtSize, &prof.ConferenceKeysToAttend)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &prof, nil
}

func (p *Postgres) PutProfile(ctx context.Context, prof *model.Profile) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO profiles (user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (user_id) DO UPDATE SET
		   display_name = EXCLUDED.display_name,
		   main_email = EXCLUDED.main_email,
		   tee_shirt_size = EXCLUDED.tee_shirt_size,
		   conference_keys_to_attend = EXCLUDED.conference_keys_to_attend`,
		prof.UserID, prof.DisplayName, prof.MainEmail, prof.TeeShirtSize, prof.ConferenceKeysToAttend,
	)
	if err != nil {
		return fmt.Errorf("put profile: %w", err)
	}
	return nil
}

func (p *Postgres) GetProfiles(ctx context.Context, userIDs []string) (map[string]*model.Profile, error) {
	profiles := make(map[string]*model.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return profiles, nil
	}
	rows, err := p.db.Query(ctx,
		`SELECT user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend
		 FROM profiles WHERE user_id = ANY($1)`,
		userIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("get profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var prof model.Profile
		if err := rows.Scan(&prof.UserID, &prof.DisplayName, &prof.MainEmail,
			&prof.TeeShirtSize, &prof.ConferenceKeysToAttend); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles[prof.UserID] = &prof
	}
	return profiles, rows.Err()
}

// ── Conferences ──────────────────────────────────────────────────────────

func (p *Postgres) PutConference(ctx context.Context, c *model.Conference) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO conferences (`+conferenceColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
		   name = EXCLUDED.name,
		   city = EXCLUDED.city,
		   topics = EXCLUDED.topics,
		   start_date = EXCLUDED.start_date,
		   end_date = EXCLUDED.end_date,
		   month = EXCLUDED.month,
		   max_attendees = EXCLUDED.max_attendees,
		   seats_available = EXCLUDED.seats_available`,
		c.ID, c.OrganizerUserID, c.Name, c.City, c.Topics,
		c.StartDate, c.EndDate, c.Month, c.MaxAttendees, c.SeatsAvailable, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("put conference: %w", err)
	}
	return nil
}

func (p *Postgres) GetConference(ctx context.Context, id string) (*model.Conference, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	c, err := scanConference(p.db.QueryRow(ctx,
		`SELECT `+conferenceColumns+` FROM conferences WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get conference: %w", err)
	}
	return c, nil
}

func (p *Postgres) GetConferences(ctx context.Context, ids []string) ([]*model.Conference, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if validID(id) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}
	rows, err := p.db.Query(ctx,
		`SELECT `+conferenceColumns+` FROM conferences WHERE id = ANY($1)`, valid)
	if err != nil {
		return nil, fmt.Errorf("get conferences: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*model.Conference, len(valid))
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conference: %w", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Preserve caller order, skipping unresolvable keys.
	out := make([]*model.Conference, 0, len(valid))
	for _, id := range valid {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *Postgres) ConferencesByOrganizer(ctx context.Context, userID string) ([]*model.Conference, error) {
	return p.queryConferences(ctx,
		`SELECT `+conferenceColumns+` FROM conferences
		 WHERE organizer_user_id = $1 ORDER BY created_at`, userID)
}

func (p *Postgres) NearlySoldOut(ctx context.Context) ([]*model.Conference, error) {
	return p.queryConferences(ctx,
		`SELECT `+conferenceColumns+` FROM conferences
		 WHERE seats_available > 0 AND seats_available <= 5 ORDER BY name`)
}

// QueryConferences translates a validated plan into SQL. The topic
// condition tests each element of the topics array.
func (p *Postgres) QueryConferences(ctx context.Context, plan query.Plan) ([]*model.Conference, error) {
	var (
		where []string
		args  []any
	)
	for _, cond := range plan.Conditions {
		args = append(args, cond.Value())
		if cond.Field == query.FieldTopic {
			where = append(where, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM unnest(topics) AS topic WHERE topic %s $%d)",
				cond.Op.SQL(), len(args)))
		} else {
			where = append(where, fmt.Sprintf("%s %s $%d",
				cond.Field.Column(), cond.Op.SQL(), len(args)))
		}
	}

	sql := `SELECT ` + conferenceColumns + ` FROM conferences`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}
	// Sort by the inequality field first when one is present. An array
	// column has no meaningful scalar order, so a topic inequality
	// falls back to the name sort.
	if plan.Inequality != query.FieldNone && plan.Inequality != query.FieldTopic {
		sql += fmt.Sprintf(" ORDER BY %s, name", plan.Inequality.Column())
	} else {
		sql += " ORDER BY name"
	}

	return p.queryConferences(ctx, sql, args...)
}

func (p *Postgres) queryConferences(ctx context.Context, sql string, args ...any) ([]*model.Conference, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query conferences: %w", err)
	}
	defer rows.Close()

	var out []*model.Conference
	for rows.Next() {
		c, err := scanConference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conference: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ── Sessions ─────────────────────────────────────────────────────────────

func (p *Postgres) PutSession(ctx context.Context, s *model.Session) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO sessions (`+sessionColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.ConferenceID, s.OrganizerUserID, s.Name,
		s.Speaker, s.TypeOfSession, s.StartTime, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (p *Postgres) GetSession(ctx context.Context, id string) (*model.Session, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	s, err := scanSession(p.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (p *Postgres) SessionsByConference(ctx context.Context, conferenceID, typeOfSession string) ([]*model.Session, error) {
	if !validID(conferenceID) {
		return nil, ErrNotFound
	}
	if typeOfSession == "" {
		return p.querySessions(ctx,
			`SELECT `+sessionColumns+` FROM sessions
			 WHERE conference_id = $1 ORDER BY created_at`, conferenceID)
	}
	return p.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE conference_id = $1 AND type_of_session = $2 ORDER BY created_at`,
		conferenceID, typeOfSession)
}

func (p *Postgres) SessionsBySpeaker(ctx context.Context, speaker string) ([]*model.Session, error) {
	return p.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE speaker = $1 ORDER BY created_at`, speaker)
}

func (p *Postgres) CountSpeakerSessions(ctx context.Context, conferenceID, speaker string) (int, error) {
	var n int
	err := p.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM sessions WHERE conference_id = $1 AND speaker = $2`,
		conferenceID, speaker,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count speaker sessions: %w", err)
	}
	return n, nil
}

func (p *Postgres) SessionsBefore(ctx context.Context, hour int) ([]*model.Session, error) {
	return p.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE start_time < $1 ORDER BY start_time`, hour)
}

func (p *Postgres) SessionsAtOrAfter(ctx context.Context, hour int) ([]*model.Session, error) {
	return p.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE start_time >= $1 ORDER BY start_time`, hour)
}

func (p *Postgres) SessionsBeforeExcludingType(ctx context.Context, hour int, typeOfSession string) ([]*model.Session, error) {
	return p.querySessions(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE start_time < $1 AND type_of_session <> $2 ORDER BY start_time`,
		hour, typeOfSession)
}

func (p *Postgres) querySessions(ctx context.Context, sql string, args ...any) ([]*model.Session, error) {
	rows, err := p.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ── Wishlist ─────────────────────────────────────────────────────────────

func (p *Postgres) AddWishlistEntry(ctx context.Context, e *model.WishlistEntry) error {
	_, err := p.db.Exec(ctx,
		`INSERT INTO wishlist_entries (id, session_id, user_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		e.ID, e.SessionID, e.UserID, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert wishlist entry: %w", err)
	}
	return nil
}

func (p *Postgres) WishlistByUser(ctx context.Context, userID string) ([]*model.WishlistEntry, error) {
	rows, err := p.db.Query(ctx,
		`SELECT id, session_id, user_id, created_at
		 FROM wishlist_entries WHERE user_id = $1 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list wishlist: %w", err)
	}
	defer rows.Close()

	var out []*model.WishlistEntry
	for rows.Next() {
		var e model.WishlistEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.UserID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteWishlistBySession(ctx context.Context, sessionID string) (int, error) {
	if !validID(sessionID) {
		return 0, nil
	}
	tag, err := p.db.Exec(ctx,
		`DELETE FROM wishlist_entries WHERE session_id = $1`, sessionID)
	if err != nil {
		return 0, fmt.Errorf("delete wishlist entries: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ── Transactions ─────────────────────────────────────────────────────────

// InTx runs fn inside a single database transaction. ForUpdate reads
// take row-level exclusive locks, so two concurrent registrations
// against the same conference serialize: the second blocks until the
// first commits, then observes the decremented seat count.
func (p *Postgres) InTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(&pgxTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) GetConferenceForUpdate(ctx context.Context, id string) (*model.Conference, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	c, err := scanConference(t.tx.QueryRow(ctx,
		`SELECT `+conferenceColumns+` FROM conferences WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock conference row: %w", err)
	}
	return c, nil
}

func (t *pgxTx) GetProfileForUpdate(ctx context.Context, userID string) (*model.Profile, error) {
	var prof model.Profile
	err := t.tx.QueryRow(ctx,
		`SELECT user_id, display_name, main_email, tee_shirt_size, conference_keys_to_attend
		 FROM profiles WHERE user_id = $1 FOR UPDATE`,
		userID,
	).Scan(&prof.UserID, &prof.DisplayName, &prof.MainEmail, &prof.TeeShirtSize, &prof.ConferenceKeysToAttend)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lock profile row: %w", err)
	}
	return &prof, nil
}

func (t *pgxTx) PutConference(ctx context.Context, c *model.Conference) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE conferences SET
		   name = $2, city = $3, topics = $4, start_date = $5, end_date = $6,
		   month = $7, max_attendees = $8, seats_available = $9
		 WHERE id = $1`,
		c.ID, c.Name, c.City, c.Topics, c.StartDate, c.EndDate,
		c.Month, c.MaxAttendees, c.SeatsAvailable,
	)
	if err != nil {
		return fmt.Errorf("update conference: %w", err)
	}
	return nil
}

func (t *pgxTx) PutProfile(ctx context.Context, prof *model.Profile) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE profiles SET
		   display_name = $2, main_email = $3, tee_shirt_size = $4,
		   conference_keys_to_attend = $5
		 WHERE user_id = $1`,
		prof.UserID, prof.DisplayName, prof.MainEmail, prof.TeeShirtSize,
		prof.ConferenceKeysToAttend,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}
