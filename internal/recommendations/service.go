package recommendations

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"recommendations-service/internal/shared/metrics"
	"recommendations-service/internal/shared/telemetry"
)

// Input is the client-supplied body for create and update. Pointers let
// validation tell a missing field from a zero value.
type Input struct {
	ProductOrigin *int64 `json:"product_origin" validate:"required"`
	ProductTarget *int64 `json:"product_target" validate:"required"`
	Relation      *int   `json:"relation" validate:"required,relation"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("relation", validRelationField); err != nil {
		panic(fmt.Sprintf("register relation validator: %v", err))
	}
	return v
}

func validRelationField(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Relation(fl.Field().Int()).Valid()
	default:
		return false
	}
}

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create stores a new active recommendation with a zero dislike counter.
func (s *Service) Create(ctx context.Context, in Input) (Recommendation, error) {
	if err := s.ready(); err != nil {
		return Recommendation{}, err
	}
	fields, err := in.fields()
	if err != nil {
		return Recommendation{}, s.observe("create", err)
	}
	rec, err := s.Repo.Create(ctx, fields)
	if err != nil {
		return Recommendation{}, s.observe("create", err)
	}
	s.observe("create", nil)
	telemetry.Info("recommendation.created", map[string]any{
		"recommendation_id": rec.ID,
		"product_origin":    rec.ProductOrigin,
		"product_target":    rec.ProductTarget,
		"relation":          int(rec.Relation),
	})
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Recommendation, error) {
	if err := s.ready(); err != nil {
		return Recommendation{}, err
	}
	rec, err := s.Repo.GetByID(ctx, id)
	return rec, s.observe("get", err)
}

// Update replaces origin, target and relation. Id and dislike are kept.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Recommendation, error) {
	if err := s.ready(); err != nil {
		return Recommendation{}, err
	}
	fields, err := in.fields()
	if err != nil {
		return Recommendation{}, s.observe("update", err)
	}
	rec, err := s.Repo.Update(ctx, id, fields)
	if err != nil {
		return Recommendation{}, s.observe("update", err)
	}
	s.observe("update", nil)
	return rec, nil
}

// Delete soft deletes id. Unknown or already deleted ids succeed.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.Repo.SoftDelete(ctx, id); err != nil {
		return s.observe("delete", err)
	}
	s.observe("delete", nil)
	telemetry.Info("recommendation.deleted", map[string]any{"recommendation_id": id})
	return nil
}

// Dislike increments the dislike counter of an active record by one.
func (s *Service) Dislike(ctx context.Context, id int64) (Recommendation, error) {
	if err := s.ready(); err != nil {
		return Recommendation{}, err
	}
	rec, err := s.Repo.IncrementDislike(ctx, id)
	return rec, s.observe("dislike", err)
}

func (s *Service) Search(ctx context.Context, filter Filter) ([]Recommendation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if filter.Relation != nil && !filter.Relation.Valid() {
		err := fmt.Errorf("%w: relation must be 1, 2 or 3, got %d", ErrInvalidRelation, *filter.Relation)
		return nil, s.observe("search", err)
	}
	recs, err := s.Repo.Search(ctx, filter)
	if err != nil {
		return nil, s.observe("search", err)
	}
	s.observe("search", nil)
	return recs, nil
}

// Reset irrecoverably removes every record.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.Repo.Reset(ctx); err != nil {
		return s.observe("reset", err)
	}
	s.observe("reset", nil)
	telemetry.Warn("recommendation.reset", nil)
	return nil
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil {
		return errors.New("recommendations service not configured")
	}
	return nil
}

func (s *Service) observe(operation string, err error) error {
	metrics.ObserveOperation(operation, outcome(err))
	return err
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidRelation):
		return "invalid_relation"
	case errors.Is(err, ErrValidation):
		return "invalid"
	default:
		return "error"
	}
}

func (in Input) fields() (Fields, error) {
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) || len(verrs) == 0 {
			return Fields{}, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		fe := verrs[0]
		if fe.Tag() == "relation" {
			return Fields{}, fmt.Errorf("%w: relation must be 1, 2 or 3, got %v", ErrInvalidRelation, fe.Value())
		}
		return Fields{}, fmt.Errorf("%w: missing %s", ErrValidation, fe.Field())
	}
	return Fields{
		ProductOrigin: *in.ProductOrigin,
		ProductTarget: *in.ProductTarget,
		Relation:      Relation(*in.Relation),
	}, nil
}
