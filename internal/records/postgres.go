package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wolfman30/telehealth-ussd/internal/geo"
)

const uniqueViolation = "23505"

// PgxPool is the subset of pgxpool.Pool used by PostgresStore.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists records in Postgres.
type PostgresStore struct {
	pool PgxPool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("records: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FindPatientByPhone(ctx context.Context, phone string) (*Patient, error) {
	query := `
		SELECT id, phone_number, name, age, gender, location, latitude, longitude, language, created_at
		FROM patients
		WHERE phone_number = $1
	`
	var (
		p        Patient
		lat, lon *float64
	)
	if err := s.pool.QueryRow(ctx, query, phone).Scan(
		&p.ID,
		&p.PhoneNumber,
		&p.Name,
		&p.Age,
		&p.Gender,
		&p.Location,
		&lat,
		&lon,
		&p.Language,
		&p.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("records: select patient failed: %w", err)
	}
	p.Coordinates = pointFrom(lat, lon)

	symptoms, err := s.listSymptoms(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Symptoms = symptoms
	return &p, nil
}

func (s *PostgresStore) listSymptoms(ctx context.Context, patientID int64) ([]Symptom, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT text, severity, category, recorded_at
		FROM patient_symptoms
		WHERE patient_id = $1
		ORDER BY recorded_at, id
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("records: select symptoms failed: %w", err)
	}
	defer rows.Close()

	var out []Symptom
	for rows.Next() {
		var (
			sym                Symptom
			severity, category string
		)
		if err := rows.Scan(&sym.Text, &severity, &category, &sym.RecordedAt); err != nil {
			return nil, fmt.Errorf("records: scan symptom failed: %w", err)
		}
		sym.Severity, sym.Category = Severity(severity), Category(category)
		out = append(out, sym)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: iterate symptoms failed: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CreatePatient(ctx context.Context, in NewPatient) (*Patient, error) {
	if in.Coordinates != nil && !in.Coordinates.Valid() {
		return nil, ErrInvalidCoordinates
	}
	lat, lon := splitPoint(in.Coordinates)
	query := `
		INSERT INTO patients (phone_number, name, age, gender, location, latitude, longitude, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	p := Patient{
		PhoneNumber: in.PhoneNumber,
		Name:        in.Name,
		Age:         in.Age,
		Gender:      in.Gender,
		Location:    in.Location,
		Coordinates: in.Coordinates,
		Language:    in.Language,
	}
	if err := s.pool.QueryRow(ctx, query,
		in.PhoneNumber,
		in.Name,
		in.Age,
		in.Gender,
		in.Location,
		lat,
		lon,
		in.Language,
	).Scan(&p.ID, &p.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, ErrPatientExists
		}
		return nil, fmt.Errorf("records: insert patient failed: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) UpdatePatientCoordinates(ctx context.Context, patientID int64, pt geo.Point) error {
	if !pt.Valid() {
		return ErrInvalidCoordinates
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE patients SET latitude = $2, longitude = $3, updated_at = NOW()
		WHERE id = $1
	`, patientID, pt.Lat, pt.Lon)
	if err != nil {
		return fmt.Errorf("records: update coordinates failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

func (s *PostgresStore) AppendPatientSymptom(ctx context.Context, patientID int64, symptom Symptom) error {
	if symptom.RecordedAt.IsZero() {
		symptom.RecordedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO patient_symptoms (patient_id, text, severity, category, recorded_at)
		VALUES ($1, $2, $3, $4, $5)
	`, patientID, symptom.Text, string(symptom.Severity), string(symptom.Category), symptom.RecordedAt)
	if err != nil {
		return fmt.Errorf("records: insert symptom failed: %w", err)
	}
	return nil
}

const providerColumns = `id, name, specialization, languages, location, latitude, longitude, COALESCE(email, '')`

func (s *PostgresStore) ListProviders(ctx context.Context) ([]Provider, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+providerColumns+` FROM providers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("records: select providers failed: %w", err)
	}
	defer rows.Close()

	var out []Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: iterate providers failed: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetProvider(ctx context.Context, id int64) (*Provider, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+providerColumns+` FROM providers WHERE id = $1`, id)
	p, err := scanProvider(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProviderNotFound
	}
	return p, err
}

func scanProvider(row pgx.Row) (*Provider, error) {
	var (
		p        Provider
		lat, lon *float64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Specialization, &p.Languages, &p.Location, &lat, &lon, &p.Email); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("records: scan provider failed: %w", err)
	}
	p.Coordinates = pointFrom(lat, lon)
	return &p, nil
}

func (s *PostgresStore) CreateAppointment(ctx context.Context, appt Appointment) (*Appointment, error) {
	if appt.Status == "" {
		appt.Status = AppointmentStatusPending
	}
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO appointments (patient_id, provider_id, date, time, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, appt.PatientID, appt.ProviderID, appt.Date, appt.Time, appt.Status).Scan(&appt.ID, &appt.CreatedAt); err != nil {
		return nil, fmt.Errorf("records: insert appointment failed: %w", err)
	}
	return &appt, nil
}

func (s *PostgresStore) CreateMessage(ctx context.Context, msg Message) (*Message, error) {
	if msg.Sender == "" {
		msg.Sender = SenderPatient
	}
	if err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (provider_id, patient_id, content, sender)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, msg.ProviderID, msg.PatientID, msg.Content, string(msg.Sender)).Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return nil, fmt.Errorf("records: insert message failed: %w", err)
	}
	return &msg, nil
}

func (s *PostgresStore) ListConversation(ctx context.Context, patientID int64, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, provider_id, patient_id, content, sender, read, created_at
		FROM messages
		WHERE patient_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("records: select messages failed: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var (
			m      Message
			sender string
		)
		if err := rows.Scan(&m.ID, &m.ProviderID, &m.PatientID, &m.Content, &sender, &m.Read, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("records: scan message failed: %w", err)
		}
		m.Sender = Sender(sender)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: iterate messages failed: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ListHealthInfo(ctx context.Context, language string, topic Topic) ([]HealthInfo, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, topic, title, content, language
		FROM health_info
		WHERE language = $1 AND ($2 = '' OR topic = $2)
		ORDER BY id
	`, language, string(topic))
	if err != nil {
		return nil, fmt.Errorf("records: select health info failed: %w", err)
	}
	defer rows.Close()

	var out []HealthInfo
	for rows.Next() {
		var (
			h     HealthInfo
			topic string
		)
		if err := rows.Scan(&h.ID, &topic, &h.Title, &h.Content, &h.Language); err != nil {
			return nil, fmt.Errorf("records: scan health info failed: %w", err)
		}
		h.Topic = Topic(topic)
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: iterate health info failed: %w", err)
	}
	return out, nil
}

func pointFrom(lat, lon *float64) *geo.Point {
	if lat == nil || lon == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Lon: *lon}
}

func splitPoint(p *geo.Point) (*float64, *float64) {
	if p == nil {
		return nil, nil
	}
	lat, lon := p.Lat, p.Lon
	return &lat, &lon
}
