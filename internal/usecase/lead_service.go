package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

type LeadUpsertMode int

const (
	// LeadCapture recusa contato já cadastrado (409).
	LeadCapture LeadUpsertMode = iota
	// LeadConversion atualiza o lead existente e marca como convertido.
	LeadConversion
)

type LeadUpsertInput struct {
	Mode              LeadUpsertMode
	LandingSource     string
	Name              string
	Email             *string
	Phone             *string
	UserType          string
	ConsentMarketing  bool
	ConversionStatus  entity.ConversionStatus
	RemarketingStatus string
	ProductID         *string
}

type LeadService struct {
	Repo   entity.LeadRepositoryInterface
	Locker ContactLocker
	log    *zap.Logger
}

func NewLeadService(repo entity.LeadRepositoryInterface, locker ContactLocker, log *zap.Logger) *LeadService {
	if log == nil {
		log = zap.NewNop()
	}
	return &LeadService{Repo: repo, Locker: locker, log: log}
}

// FindExisting busca por email OU telefone; nil quando não existe.
func (s *LeadService) FindExisting(ctx context.Context, email, phone *string) (*entity.Lead, error) {
	lead, err := s.Repo.FindByContact(ctx, email, phone)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &TechnicalError{Code: "LEAD_LOOKUP", Message: "erro ao buscar lead", Err: err}
	}
	return lead, nil
}

// EnsureNew devolve 409 com o id do lead quando o contato já existe.
func (s *LeadService) EnsureNew(ctx context.Context, email, phone *string) error {
	existing, err := s.FindExisting(ctx, email, phone)
	if err != nil {
		return err
	}
	if existing != nil {
		return leadConflict(existing)
	}
	return nil
}

func (s *LeadService) Upsert(ctx context.Context, in LeadUpsertInput) (*entity.Lead, error) {
	email := entity.NullIfEmpty(in.Email)
	phone := entity.NullIfEmpty(in.Phone)
	if email == nil && phone == nil {
		return nil, newValidationError("Dados inválidos", []ValidationError{{"email", entity.ErrLeadContactRequired.Error()}})
	}

	if s.Locker != nil {
		unlock, err := s.Locker.Lock(ctx, contactLockKeys(email, phone)...)
		if err != nil {
			return nil, &TechnicalError{Code: "LEAD_LOCK", Message: "não foi possível travar o contato", Err: err}
		}
		defer unlock()
	}

	existing, err := s.FindExisting(ctx, email, phone)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return s.applyExisting(ctx, existing, in, email, phone)
	}

	lead, err := entity.NewLead(in.LandingSource, in.Name, email, phone)
	if err != nil {
		return nil, newValidationError("Dados inválidos", []ValidationError{{"email", err.Error()}})
	}
	if in.UserType != "" {
		lead.UserType = in.UserType
	}
	lead.ConsentMarketing = in.ConsentMarketing
	if in.RemarketingStatus != "" {
		lead.RemarketingStatus = in.RemarketingStatus
	}
	lead.ProductID = in.ProductID
	if in.Mode == LeadConversion {
		lead.ConversionStatus = entity.Converted
	} else if in.ConversionStatus != "" {
		lead.ConversionStatus = in.ConversionStatus
	}

	err = s.Repo.Create(ctx, lead)
	if errors.Is(err, entity.ErrLeadContactTaken) {
		// Outra requisição inseriu o mesmo contato entre a busca e o insert.
		s.log.Info("lead inserido concorrentemente, reaplicando como existente",
			zap.Stringp("email", email), zap.Stringp("phone", phone))
		existing, err = s.FindExisting(ctx, email, phone)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			return nil, &TechnicalError{Code: "LEAD_RACE", Message: "lead conflitante não encontrado após violação de unicidade", Err: entity.ErrLeadContactTaken}
		}
		return s.applyExisting(ctx, existing, in, email, phone)
	}
	if err != nil {
		return nil, &TechnicalError{Code: "LEAD_CREATE", Message: "erro ao criar lead", Err: err}
	}
	return lead, nil
}

func (s *LeadService) applyExisting(ctx context.Context, lead *entity.Lead, in LeadUpsertInput, email, phone *string) (*entity.Lead, error) {
	if in.Mode == LeadCapture {
		return nil, leadConflict(lead)
	}

	lead.Name = in.Name
	if email != nil {
		lead.Email = email
	}
	if phone != nil {
		lead.Phone = phone
	}
	// canais desta compra; contatos antigos ficam gravados mas não entram na classificação
	lead.ContactType = entity.ResolveContactType(email, phone)
	lead.ConversionStatus = entity.Converted
	lead.ProductID = in.ProductID

	if err := s.Repo.Update(ctx, lead); err != nil {
		return nil, &TechnicalError{Code: "LEAD_UPDATE", Message: "erro ao atualizar lead", Err: err}
	}
	return lead, nil
}

func leadConflict(lead *entity.Lead) *AppError {
	return &AppError{
		Kind:    KindConflict,
		Code:    "LEAD_EXISTS",
		Message: "Lead já cadastrado com este email ou telefone",
		Details: map[string]any{"lead_id": lead.ID},
	}
}

func contactLockKeys(email, phone *string) []string {
	var keys []string
	if email != nil {
		keys = append(keys, "lead:email:"+strings.ToLower(*email))
	}
	if phone != nil {
		keys = append(keys, "lead:phone:"+*phone)
	}
	return keys
}
