package checkins

import (
	"context"
	"strings"
	"time"

	"seatkeep/internal/shared/apperrors"
	"seatkeep/internal/shared/config"
	"seatkeep/pkg/logger"
	"seatkeep/pkg/messaging"

	"github.com/google/uuid"
)

type Service interface {
	Checkin(ctx context.Context, eventID, registrationID, idempotencyKey string, meta Metadata) (*Result, error)
	Scan(ctx context.Context, eventID, token, idempotencyKey string, meta Metadata) (*Result, error)
	Get(ctx context.Context, eventID, registrationID string) (*CheckinRecord, error)
	Pass(ctx context.Context, eventID, registrationID string) ([]byte, error)
}

type service struct {
	repo      Repository
	publisher messaging.Publisher
	config    config.CheckinConfig
	now       func() time.Time
}

func NewService(repo Repository, publisher messaging.Publisher, cfg config.CheckinConfig) Service {
	if publisher == nil {
		publisher = messaging.NoopPublisher{}
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		config:    cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func parseEventID(eventID string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(eventID))
	if err != nil {
		return uuid.Nil, apperrors.Validation(apperrors.CodeInvalidInput, "invalid event ID %q", eventID)
	}
	return id, nil
}

func normalizeRegistration(registrationID string) (string, error) {
	reg := strings.TrimSpace(registrationID)
	if reg == "" {
		return "", apperrors.Validation(apperrors.CodeInvalidInput, "registration ID is required")
	}
	if len(reg) > 100 {
		return "", apperrors.Validation(apperrors.CodeInvalidInput, "registration ID is longer than 100 characters")
	}
	return reg, nil
}

// verify checks the registration bought a seat of the event, when required
func (s *service) verify(ctx context.Context, eventID uuid.UUID, registrationID string) error {
	if !s.config.RequireSoldSeat {
		return nil
	}
	ok, err := s.repo.HasSoldSeat(ctx, eventID, registrationID)
	if err != nil {
		return apperrors.Internal(err, "failed to verify registration")
	}
	if !ok {
		return apperrors.NotFound("registration %s holds no sold seat for event %s", registrationID, eventID)
	}
	return nil
}

// Checkin records the registration once. A retry with the same key returns the
// stored record untouched; a different key overwrites the metadata.
func (s *service) Checkin(ctx context.Context, eventID, registrationID, idempotencyKey string, meta Metadata) (*Result, error) {
	id, err := parseEventID(eventID)
	if err != nil {
		return nil, err
	}
	reg, err := normalizeRegistration(registrationID)
	if err != nil {
		return nil, err
	}
	if err := s.verify(ctx, id, reg); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(idempotencyKey)
	if key == "" {
		// without a key every retry of the registration counts as a duplicate
		key = reg
	}
	if meta.Source == "" {
		meta.Source = SourceManual
	}

	record := &CheckinRecord{
		ID:             uuid.New(),
		EventID:        id,
		RegistrationID: reg,
		IdempotencyKey: key,
		CheckedInAt:    s.now(),
		Operator:       strings.TrimSpace(meta.Operator),
		DeviceID:       strings.TrimSpace(meta.DeviceID),
		Location:       strings.TrimSpace(meta.Location),
		Source:         meta.Source,
	}

	inserted, err := s.repo.Insert(ctx, record)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to record check-in")
	}

	already := false
	if !inserted {
		overwritten, err := s.repo.Overwrite(ctx, record)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to record check-in")
		}
		already = !overwritten

		record, err = s.repo.Get(ctx, id, reg)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to load check-in")
		}
		if record == nil {
			return nil, apperrors.Internal(nil, "check-in disappeared while recording")
		}
	}

	if !already {
		messaging.Emit(ctx, s.publisher, messaging.NewEvent(messaging.EventCheckinRecorded, id.String(), reg, nil,
			map[string]interface{}{"source": record.Source, "device_id": record.DeviceID, "location": record.Location}))
	}
	logger.GetDefault().LogCheckinRecorded(ctx, id.String(), reg, already)

	return &Result{Record: record, Already: already}, nil
}

// Scan checks in the registration carried by a QR token
func (s *service) Scan(ctx context.Context, eventID, token, idempotencyKey string, meta Metadata) (*Result, error) {
	id, err := parseEventID(eventID)
	if err != nil {
		return nil, err
	}
	tok, err := DecodeToken(token)
	if err != nil {
		return nil, err
	}
	if !sameEvent(tok.EventID, id) {
		return nil, apperrors.Validation(apperrors.CodeWrongEvent, "token belongs to event %s, not %s", tok.EventID, id).
			WithField("token_event_id", tok.EventID)
	}

	if meta.Source == "" {
		meta.Source = SourceQR
	}
	return s.Checkin(ctx, id.String(), tok.RegistrationID, idempotencyKey, meta)
}

func sameEvent(tokenEventID string, eventID uuid.UUID) bool {
	parsed, err := uuid.Parse(strings.TrimSpace(tokenEventID))
	return err == nil && parsed == eventID
}

func (s *service) Get(ctx context.Context, eventID, registrationID string) (*CheckinRecord, error) {
	id, err := parseEventID(eventID)
	if err != nil {
		return nil, err
	}
	reg, err := normalizeRegistration(registrationID)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.Get(ctx, id, reg)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to load check-in")
	}
	if record == nil {
		return nil, apperrors.NotFound("registration %s has not checked in to event %s", reg, id)
	}
	return record, nil
}

// Pass renders the registration's check-in token as a QR code PNG
func (s *service) Pass(ctx context.Context, eventID, registrationID string) ([]byte, error) {
	id, err := parseEventID(eventID)
	if err != nil {
		return nil, err
	}
	reg, err := normalizeRegistration(registrationID)
	if err != nil {
		return nil, err
	}
	if err := s.verify(ctx, id, reg); err != nil {
		return nil, err
	}

	png, err := passPNG(EncodeToken(id.String(), reg), s.config.PassQRSize)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to render check-in pass")
	}
	return png, nil
}
