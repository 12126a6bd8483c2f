package answers

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

type fakeAnswerer struct {
	calls   int
	text    string
	options string
	numeric string
	date    string
	err     error
}

func (f *fakeAnswerer) AnswerText(context.Context, string, string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeAnswerer) AnswerFromOptions(context.Context, string, []string) (string, error) {
	f.calls++
	return f.options, f.err
}

func (f *fakeAnswerer) AnswerNumeric(context.Context, string) (string, error) {
	f.calls++
	return f.numeric, f.err
}

func (f *fakeAnswerer) AnswerDate(context.Context, string) (string, error) {
	f.calls++
	return f.date, f.err
}

func newResolver(t *testing.T, fake *fakeAnswerer) *Resolver {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "answers.json"), zap.NewNop())
	return NewResolver(store, fake, zap.NewNop())
}

func TestResolveTextCachesAndSkipsModel(t *testing.T) {
	fake := &fakeAnswerer{text: "Berlin"}
	resolver := newResolver(t, fake)
	ctx := context.Background()

	answer, err := resolver.ResolveText(ctx, "What is your city?", "")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if answer != "Berlin" || fake.calls != 1 {
		t.Fatalf("answer = %q, calls = %d", answer, fake.calls)
	}

	// A hit must never reach the model, question casing notwithstanding.
	answer, err = resolver.ResolveText(ctx, "WHAT IS YOUR CITY?", "")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if answer != "Berlin" || fake.calls != 1 {
		t.Fatalf("cache hit invoked the model: answer = %q, calls = %d", answer, fake.calls)
	}
}

func TestResolveNumericExtractsDigits(t *testing.T) {
	fake := &fakeAnswerer{numeric: "I would say 7 years"}
	resolver := newResolver(t, fake)

	answer, err := resolver.ResolveNumeric(context.Background(), "Years of Go?", 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if answer != "7" {
		t.Fatalf("answer = %q, want 7", answer)
	}
}

func TestResolveNumericFallsBack(t *testing.T) {
	fake := &fakeAnswerer{numeric: "plenty"}
	resolver := newResolver(t, fake)

	answer, err := resolver.ResolveNumeric(context.Background(), "Years of Go?", 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if answer != "2" {
		t.Fatalf("answer = %q, want fallback 2", answer)
	}
}

func TestResolveOptionsProjectsCachedAnswer(t *testing.T) {
	fake := &fakeAnswerer{options: "10+ years"}
	resolver := newResolver(t, fake)
	ctx := context.Background()

	first, err := resolver.ResolveOptions(ctx, KindDropdown, "Experience with Go?", []string{"1-2 years", "10+ years"})
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first != "10+ years" {
		t.Fatalf("first = %q", first)
	}

	// Same question, differently worded options: the cached answer must be
	// projected onto the current list without a model call.
	second, err := resolver.ResolveOptions(ctx, KindDropdown, "Experience with Go?", []string{"Under 2", "Over 10"})
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second != "Under 2" && second != "Over 10" {
		t.Fatalf("second = %q, not a member of current options", second)
	}
	if fake.calls != 1 {
		t.Fatalf("cache hit invoked the model, calls = %d", fake.calls)
	}
}

func TestResolveOptionsRejectsEmptyList(t *testing.T) {
	resolver := newResolver(t, &fakeAnswerer{})

	if _, err := resolver.ResolveOptions(context.Background(), KindRadio, "Pick one", nil); err == nil {
		t.Fatalf("expected error for empty options")
	}
}

func TestResolveDateParsesReply(t *testing.T) {
	fake := &fakeAnswerer{date: "2026-09-15"}
	resolver := newResolver(t, fake)

	answer, err := resolver.ResolveDate(context.Background(), "Earliest start date?")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if answer != "2026-09-15" {
		t.Fatalf("answer = %q", answer)
	}

}

func TestResolveDateUnparseableReplyYieldsEmpty(t *testing.T) {
	bad := &fakeAnswerer{date: "whenever works for you"}
	resolver := newResolver(t, bad)

	answer, err := resolver.ResolveDate(context.Background(), "Earliest start date?")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if answer != "" {
		t.Fatalf("answer = %q, want empty for unparseable reply", answer)
	}

	// Nothing usable came back, so nothing gets cached.
	if resolver.store.Len() != 0 {
		t.Fatalf("unparseable reply was persisted, store has %d records", resolver.store.Len())
	}
}
