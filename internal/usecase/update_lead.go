package usecase

import (
	"context"
	"errors"

	"github.com/LeomirDias/gpmd-sys/internal/entity"
)

type UpdateLeadUseCase struct {
	Repo entity.LeadRepositoryInterface
}

func NewUpdateLeadUseCase(repo entity.LeadRepositoryInterface) *UpdateLeadUseCase {
	return &UpdateLeadUseCase{Repo: repo}
}

func (uc *UpdateLeadUseCase) Execute(ctx context.Context, input UpdateLeadInput) (*UpdateLeadOutput, error) {
	input.Email = entity.NullIfEmpty(input.Email)
	input.Phone = entity.NullIfEmpty(input.Phone)
	if errs := ValidateUpdateLeadInput(input); len(errs) > 0 {
		return nil, newValidationError("Dados inválidos", errs)
	}

	lead, err := uc.Repo.FindByContact(ctx, input.Email, input.Phone)
	if errors.Is(err, entity.ErrLeadNotFound) {
		return nil, &AppError{Kind: KindNotFound, Code: "LEAD_NOT_FOUND", Message: "Lead não encontrado", Err: err}
	}
	if err != nil {
		return nil, &TechnicalError{Code: "LEAD_LOOKUP", Message: "erro ao buscar lead", Err: err}
	}

	updated, err := uc.Repo.UpdateUserType(ctx, lead.ID, input.UserType)
	if err != nil {
		return nil, &TechnicalError{Code: "LEAD_UPDATE", Message: "erro ao atualizar lead", Err: err}
	}
	return &UpdateLeadOutput{Success: true, Data: updated}, nil
}
