package answers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

// ErrNoAnswer signals that the model produced nothing usable for a question.
var ErrNoAnswer = errors.New("no usable answer")

// Answerer produces fresh answers when the cache misses. Implemented by the
// ai package; faked in tests.
type Answerer interface {
	AnswerText(ctx context.Context, question, jobDescription string) (string, error)
	AnswerFromOptions(ctx context.Context, question string, options []string) (string, error)
	AnswerNumeric(ctx context.Context, question string) (string, error)
	AnswerDate(ctx context.Context, question string) (string, error)
}

// Resolver answers form questions cache-first: a cache hit never reaches the
// model, a miss is answered, persisted and returned.
type Resolver struct {
	store    *Store
	answerer Answerer
	logger   *zap.Logger
}

func NewResolver(store *Store, answerer Answerer, logger *zap.Logger) *Resolver {
	return &Resolver{
		store:    store,
		answerer: answerer,
		logger:   logger,
	}
}

// ResolveText answers a free-text question. The job description travels along
// so experience questions can be answered against the posting.
func (r *Resolver) ResolveText(ctx context.Context, question, jobDescription string) (string, error) {
	if answer, ok := r.store.Lookup(KindTextbox, question); ok {
		r.logHit(KindTextbox, question)
		return answer, nil
	}

	answer, err := r.answerer.AnswerText(ctx, question, jobDescription)
	if err != nil {
		return "", fmt.Errorf("answering %q: %w", question, err)
	}

	return answer, r.persist(KindTextbox, question, answer)
}

// ResolveNumeric answers a numeric question, falling back to the provided
// default when no digits can be extracted from the reply.
func (r *Resolver) ResolveNumeric(ctx context.Context, question string, fallback int) (string, error) {
	if answer, ok := r.store.Lookup(KindNumeric, question); ok {
		r.logHit(KindNumeric, question)
		return answer, nil
	}

	raw, err := r.answerer.AnswerNumeric(ctx, question)
	if err != nil {
		return "", fmt.Errorf("answering numeric %q: %w", question, err)
	}

	answer := strconv.Itoa(ExtractNumber(raw, fallback))
	return answer, r.persist(KindNumeric, question, answer)
}

// ResolveDate answers a date question with a yyyy-mm-dd string. A reply with
// no recognizable date yields "" without error: the field stays unfilled.
func (r *Resolver) ResolveDate(ctx context.Context, question string) (string, error) {
	if answer, ok := r.store.Lookup(KindDate, question); ok {
		r.logHit(KindDate, question)
		return answer, nil
	}

	raw, err := r.answerer.AnswerDate(ctx, question)
	if err != nil {
		return "", fmt.Errorf("answering date %q: %w", question, err)
	}

	answer, ok := ParseDate(raw)
	if !ok {
		r.logger.Debug("unparseable date reply, leaving field empty",
			zap.String("question", Sanitize(question)),
			zap.String("reply", raw),
		)
		return "", nil
	}

	return answer, r.persist(KindDate, question, answer)
}

// ResolveOptions answers a closed-choice question. The returned value is
// always one of options, for cached answers too: a stale cache entry is
// projected onto the current options list.
func (r *Resolver) ResolveOptions(ctx context.Context, kind Kind, question string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("%w: question %q has no options", ErrNoAnswer, question)
	}

	if answer, ok := r.store.Lookup(kind, question); ok {
		r.logHit(kind, question)
		return BestMatch(answer, options), nil
	}

	raw, err := r.answerer.AnswerFromOptions(ctx, question, options)
	if err != nil {
		return "", fmt.Errorf("answering options %q: %w", question, err)
	}

	answer := BestMatch(raw, options)
	return answer, r.persist(kind, question, answer)
}

func (r *Resolver) persist(kind Kind, question, answer string) error {
	if err := r.store.Save(kind, question, answer); err != nil {
		return fmt.Errorf("persisting answer for %q: %w", question, err)
	}
	return nil
}

func (r *Resolver) logHit(kind Kind, question string) {
	r.logger.Debug("answer cache hit",
		zap.String("kind", string(kind)),
		zap.String("question", Sanitize(question)),
	)
}
