package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/budget"
	"github.com/bfrpaulondev/fitness-api/internal/dto"
	"github.com/bfrpaulondev/fitness-api/internal/infra"
	"github.com/bfrpaulondev/fitness-api/internal/model"
	"github.com/bfrpaulondev/fitness-api/internal/repository"
	"github.com/bfrpaulondev/fitness-api/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const alertaTimeout = 5 * time.Second

// AlertPublisher delivers budget alerts out of band. *worker.Dispatcher
// implements it by enqueueing into Redis.
type AlertPublisher interface {
	EnqueueBudgetAlert(ctx context.Context, payload worker.BudgetAlertPayload) error
}

type ResumenService interface {
	// Resumen never fails because of alert delivery; destinatario may be empty.
	Resumen(ctx context.Context, userID, listaID uuid.UUID, destinatario string) (*dto.ResumenResponse, error)
	// ExportarPDF renders the list with its summary. It never emits alerts.
	ExportarPDF(ctx context.Context, userID, listaID uuid.UUID) ([]byte, string, error)
}

type resumenService struct {
	repo      repository.ListaCompraRepository
	publisher AlertPublisher
	timeout   time.Duration
}

// NewResumenService accepts a nil publisher, which disables alerts.
func NewResumenService(repo repository.ListaCompraRepository, publisher AlertPublisher) ResumenService {
	return &resumenService{repo: repo, publisher: publisher, timeout: alertaTimeout}
}

func (s *resumenService) buscar(ctx context.Context, userID, listaID uuid.UUID) (*model.ListaCompra, error) {
	lista, err := s.repo.FindByIDForUser(ctx, listaID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrListaNoEncontrada
	}
	return lista, err
}

func (s *resumenService) Resumen(ctx context.Context, userID, listaID uuid.UUID, destinatario string) (*dto.ResumenResponse, error) {
	lista, err := s.buscar(ctx, userID, listaID)
	if err != nil {
		return nil, err
	}

	sum := budget.Summarize(lista)

	if sum.Status.Alerting() && lista.Notificar && s.publisher != nil {
		payload := worker.BudgetAlertPayload{
			ListaID:   lista.ID.String(),
			UserID:    userID.String(),
			Nombre:    lista.Nombre,
			Status:    string(sum.Status),
			Spent:     sum.Spent,
			Budget:    sum.Budget,
			Email:     destinatario,
			EmitidaAt: time.Now().UTC().Format(time.RFC3339),
		}
		// detached from the request: a slow or failing queue must not delay the response
		go s.publicar(payload)
	}

	return &dto.ResumenResponse{
		ListaID:   lista.ID.String(),
		Planned:   sum.Planned,
		Spent:     sum.Spent,
		Budget:    sum.Budget,
		Remaining: sum.Remaining,
		Status:    string(sum.Status),
	}, nil
}

func (s *resumenService) ExportarPDF(ctx context.Context, userID, listaID uuid.UUID) ([]byte, string, error) {
	lista, err := s.buscar(ctx, userID, listaID)
	if err != nil {
		return nil, "", err
	}
	out, err := infra.GenerateListaPDF(lista, budget.Summarize(lista))
	if err != nil {
		return nil, "", err
	}
	return out, fmt.Sprintf("lista_%04d-%02d_%s.pdf", lista.Anio, lista.Mes, lista.ID.String()[:8]), nil
}

func (s *resumenService) publicar(payload worker.BudgetAlertPayload) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("lista_id", payload.ListaID).Msg("alerta de presupuesto: panic")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.publisher.EnqueueBudgetAlert(ctx, payload); err != nil {
		log.Warn().
			Err(err).
			Str("lista_id", payload.ListaID).
			Str("status", payload.Status).
			Msg("alerta de presupuesto: no se pudo encolar")
		return
	}
	log.Debug().Str("lista_id", payload.ListaID).Str("status", payload.Status).Msg("alerta de presupuesto encolada")
}
