// Package service orchestrates one chat turn: session state, the two-phase
// model round trip, tool dispatch, and lead persistence side effects.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"inmo24x7_backend/internal/bot/transport"
	"inmo24x7_backend/internal/scheduler"
	"inmo24x7_backend/internal/session"
	"inmo24x7_backend/platform/ai/openaichat"
	"inmo24x7_backend/platform/apperr"
	"inmo24x7_backend/platform/logger"
)

const roleSystem = "system"
const roleTool = "tool"

// resetCommands end the conversation and wipe the session when received as
// the whole message.
var resetCommands = map[string]struct{}{
	"/reset":     {},
	"/reiniciar": {},
}

// ModelClient is the completion surface the orchestrator depends on.
type ModelClient interface {
	Complete(ctx context.Context, req openaichat.Request) (openaichat.Response, error)
}

// Service runs the conversation protocol.
type Service struct {
	model      ModelClient
	store      session.Store
	dispatcher *Dispatcher
	enqueuer   scheduler.HandoffEnqueuer
	prompts    *Prompts
	timeout    time.Duration
	log        *logger.Logger
	locks      *keyedLocks
}

// New creates the orchestrator. A nil enqueuer disables handoff notifications.
func New(model ModelClient, store session.Store, dispatcher *Dispatcher, enqueuer scheduler.HandoffEnqueuer, prompts *Prompts, timeout time.Duration, log *logger.Logger) *Service {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Service{
		model:      model,
		store:      store,
		dispatcher: dispatcher,
		enqueuer:   enqueuer,
		prompts:    prompts,
		timeout:    timeout,
		log:        log,
		locks:      newKeyedLocks(),
	}
}

// HandleMessage processes one visitor turn and returns the reply.
//
// Turns for the same user are serialized; the session is loaded once, mutated
// in memory, and saved once at the end, so a failed turn leaves the stored
// session as it was.
func (s *Service) HandleMessage(ctx context.Context, userID, text string, tenantID uuid.UUID, sourceType string) (transport.Reply, error) {
	text = strings.TrimSpace(text)

	unlock := s.locks.lock(userID)
	defer unlock()

	if _, ok := resetCommands[strings.ToLower(text)]; ok {
		if err := s.store.Reset(ctx, userID); err != nil {
			return transport.Reply{}, apperr.Wrap(apperr.KindInternal, "failed to reset session", err)
		}
		s.log.Info("session reset", "userId", userID)
		return transport.Reply{Messages: []string{s.prompts.ResetConfirmation}}, nil
	}

	sess, err := s.store.Load(ctx, userID)
	if err != nil {
		return transport.Reply{}, apperr.Wrap(apperr.KindInternal, "failed to load session", err)
	}

	s.dispatcher.EnsureLead(ctx, &sess, tenantID, sourceType)

	messages := s.buildTranscript(sess, text)

	first, err := s.complete(ctx, openaichat.Request{
		Messages: messages,
		Tools:    Declarations(),
	}, "first")
	if err != nil {
		return s.degradedReply(err, userID)
	}

	content := first.Content
	var handoff *HandoffRequest

	if len(first.ToolCalls) > 0 {
		results, req := s.dispatcher.Execute(ctx, &sess, tenantID, sourceType, first.ToolCalls)
		handoff = req

		followUp := append(messages, openaichat.Message{
			Role:      session.RoleAssistant,
			Content:   first.Content,
			ToolCalls: first.ToolCalls,
		})
		for _, result := range results {
			followUp = append(followUp, openaichat.Message{
				Role:       roleTool,
				Content:    result.Content,
				ToolCallID: result.ToolCallID,
				Name:       result.Name,
			})
		}

		second, err := s.complete(ctx, openaichat.Request{Messages: followUp}, "second")
		if err != nil {
			return s.degradedReply(err, userID)
		}
		content = second.Content
	}

	if strings.TrimSpace(content) == "" {
		content = s.prompts.FallbackMessage
	}

	sess.AppendTurn(session.RoleUser, text)
	sess.AppendTurn(session.RoleAssistant, content)
	if err := s.store.Save(ctx, userID, sess); err != nil {
		s.log.Error("failed to save session", "userId", userID, "error", err)
	}

	reply := transport.Reply{Messages: []string{content}}
	if handoff != nil {
		reply.Handoff = &transport.Handoff{Summary: handoff.Summary}
		s.enqueueHandoff(ctx, sess, handoff.Summary)
	}
	return reply, nil
}

func (s *Service) buildTranscript(sess session.Session, text string) []openaichat.Message {
	messages := make([]openaichat.Message, 0, len(sess.History)+2)
	messages = append(messages, openaichat.Message{Role: roleSystem, Content: s.prompts.SystemPrompt})
	for _, turn := range sess.History {
		messages = append(messages, openaichat.Message{Role: turn.Role, Content: turn.Content})
	}
	return append(messages, openaichat.Message{Role: session.RoleUser, Content: text})
}

func (s *Service) complete(ctx context.Context, req openaichat.Request, phase string) (openaichat.Response, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	resp, err := s.model.Complete(callCtx, req)
	if err != nil {
		return openaichat.Response{}, err
	}

	s.log.ModelCall(phase, len(resp.ToolCalls), float64(time.Since(start).Milliseconds()))
	return resp, nil
}

// degradedReply maps a model failure to a canned reply without touching the
// stored session, so the visitor can simply retry the turn.
func (s *Service) degradedReply(err error, userID string) (transport.Reply, error) {
	if errors.Is(err, openaichat.ErrRateLimited) {
		s.log.Warn("model rate limited", "userId", userID)
		return transport.Reply{Messages: append([]string(nil), s.prompts.RateLimitMessages...)}, nil
	}

	s.log.Error("model call failed", "userId", userID, "error", err)
	return transport.Reply{Messages: []string{s.prompts.FallbackMessage}}, nil
}

func (s *Service) enqueueHandoff(ctx context.Context, sess session.Session, summary string) {
	if s.enqueuer == nil {
		return
	}

	payload := scheduler.LeadHandoffPayload{
		UserID:         sess.UserID,
		Nombre:         sess.LeadData.Nombre,
		Contacto:       sess.LeadData.Contacto,
		Operacion:      sess.LeadData.Operacion,
		Zona:           sess.LeadData.Zona,
		PresupuestoMax: sess.LeadData.PresupuestoMax,
		Summary:        summary,
	}
	if sess.LeadID != nil {
		id := sess.LeadID.String()
		payload.LeadID = &id
	}

	if err := s.enqueuer.EnqueueLeadHandoff(ctx, payload); err != nil {
		s.log.Error("failed to enqueue handoff notification", "userId", sess.UserID, "error", err)
	}
}
