package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"modcase-bot/model"
)

const (
	guildID = "100000000000000001"
	modID   = "400000000000000001"
	userID  = "500000000000000001"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Init(":memory:")
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleCase(id string, kind model.CaseKind, createdAt int64) *model.Case {
	return &model.Case{
		CaseID:       id,
		GuildID:      guildID,
		TargetUserID: userID,
		Kind:         kind,
		Reason:       "spam",
		IssuerID:     modID,
		CreatedAt:    createdAt,
	}
}

func TestInitIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.db")
	for i := 0; i < 2; i++ {
		s, err := Init(path)
		if err != nil {
			t.Fatalf("Init #%d: %v", i+1, err)
		}
		s.Close()
	}
}

func TestCaseRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	secs := int64(600)
	c := sampleCase("AB12CD", model.KindTimeout, 1700000000)
	c.DurationSeconds = &secs
	if err := s.InsertCase(ctx, c); err != nil {
		t.Fatalf("InsertCase: %v", err)
	}
	if err := s.InsertCase(ctx, c); err == nil {
		t.Errorf("duplicate case id should fail")
	}

	got, err := s.GetCase(ctx, "AB12CD")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if got.Kind != model.KindTimeout || got.DurationSeconds == nil || *got.DurationSeconds != 600 {
		t.Errorf("unexpected case %+v", got)
	}
	if len(got.Proofs) != 0 {
		t.Errorf("proofs = %v, want empty", got.Proofs)
	}

	missing, err := s.GetCase(ctx, "ZZZZZZ")
	if err != nil || missing != nil {
		t.Errorf("GetCase(missing) = %v, %v; want nil, nil", missing, err)
	}
}

func TestCaseUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.InsertCase(ctx, sampleCase("AB12CD", model.KindWarn, 1)); err != nil {
		t.Fatal(err)
	}

	if err := s.UpdateReason(ctx, "AB12CD", "new reason"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProofs(ctx, "AB12CD", []string{"https://a", "https://b"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetProofs(ctx, "AB12CD", []string{"https://c"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLogMessage(ctx, "AB12CD", model.MessageRef{ChannelID: "1", MessageID: "2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpdateReason(ctx, "ZZZZZZ", "x"); err == nil {
		t.Errorf("updating a missing case should fail")
	}

	got, _ := s.GetCase(ctx, "AB12CD")
	if got.Reason != "new reason" {
		t.Errorf("reason = %q", got.Reason)
	}
	if len(got.Proofs) != 1 || got.Proofs[0] != "https://c" {
		t.Errorf("proofs = %v, want replaced list", got.Proofs)
	}
	if ref := got.LogRef(); ref == nil || ref.MessageID != "2" {
		t.Errorf("log ref = %+v", ref)
	}
}

func TestFindCasesOrderAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	inserts := []*model.Case{
		sampleCase("AAAAA1", model.KindWarn, 100),
		sampleCase("AAAAA2", model.KindWarn, 300),
		sampleCase("AAAAA3", model.KindKick, 200),
		sampleCase("AAAAA4", model.KindBan, 300),
	}
	inserts[2].IssuerID = "400000000000000002"
	inserts[3].TargetUserID = "500000000000000002"
	for _, c := range inserts {
		if err := s.InsertCase(ctx, c); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter model.CaseFilter
		want   []string
	}{
		{"guild", model.CaseFilter{GuildID: guildID}, []string{"AAAAA4", "AAAAA2", "AAAAA3", "AAAAA1"}},
		{"target", model.CaseFilter{GuildID: guildID, TargetUserID: userID}, []string{"AAAAA2", "AAAAA3", "AAAAA1"}},
		{"issuer", model.CaseFilter{GuildID: guildID, IssuerID: modID}, []string{"AAAAA4", "AAAAA2", "AAAAA1"}},
		{"other guild", model.CaseFilter{GuildID: "100000000000000009"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.FindCases(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d cases, want %d", len(got), len(tt.want))
			}
			for i, c := range got {
				if c.CaseID != tt.want[i] {
					t.Errorf("position %d = %s, want %s", i, c.CaseID, tt.want[i])
				}
			}
		})
	}
}

func TestResolveBanRequestOnlyOnce(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := sampleCase("REQ001", model.KindRequestBan, 1)
	c.RequestState = model.RequestPending
	if err := s.InsertCase(ctx, c); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	results := make(chan bool, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.ResolveBanRequest(ctx, "REQ001", model.RequestApproved, modID)
			if err != nil {
				t.Error(err)
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("%d resolutions succeeded, want 1", wins)
	}

	got, _ := s.GetCase(ctx, "REQ001")
	if !got.Approved || got.ApproverID != modID || got.RequestState != model.RequestApproved {
		t.Errorf("unexpected state %+v", got)
	}

	if err := s.ReopenBanRequest(ctx, "REQ001"); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetCase(ctx, "REQ001")
	if got.Approved || got.RequestState != model.RequestPending {
		t.Errorf("reopen left %+v", got)
	}
}

func TestResolveIgnoresOtherKinds(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.InsertCase(ctx, sampleCase("WARN01", model.KindWarn, 1)); err != nil {
		t.Fatal(err)
	}
	ok, err := s.ResolveBanRequest(ctx, "WARN01", model.RequestApproved, modID)
	if err != nil || ok {
		t.Errorf("ResolveBanRequest on a warn = %v, %v", ok, err)
	}
}

func TestDeleteCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	if err := s.InsertCase(ctx, sampleCase("AB12CD", model.KindWarn, 1)); err != nil {
		t.Fatal(err)
	}
	ok, err := s.DeleteCase(ctx, "AB12CD")
	if err != nil || !ok {
		t.Fatalf("DeleteCase = %v, %v", ok, err)
	}
	ok, err = s.DeleteCase(ctx, "AB12CD")
	if err != nil || ok {
		t.Errorf("second DeleteCase = %v, %v; want false, nil", ok, err)
	}
}

func TestCaseCounter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if n, err := s.CaseCount(ctx, guildID, userID); err != nil || n != 0 {
		t.Fatalf("initial count = %d, %v", n, err)
	}
	for i := 0; i < 3; i++ {
		if err := s.IncrementCaseCount(ctx, guildID, userID); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 5; i++ {
		if err := s.DecrementCaseCount(ctx, guildID, userID); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := s.CaseCount(ctx, guildID, userID); n != 0 {
		t.Errorf("count = %d, want floor of 0", n)
	}
	// Decrementing a user without a row is a no-op.
	if err := s.DecrementCaseCount(ctx, guildID, "500000000000000009"); err != nil {
		t.Errorf("decrement missing row: %v", err)
	}
}

func TestModerationConfig(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cfg, err := s.GetModerationConfig(ctx, guildID)
	if err != nil || cfg != nil {
		t.Fatalf("unconfigured guild = %+v, %v; want nil, nil", cfg, err)
	}

	fields := map[model.ConfigField]string{
		model.FieldWarnMuteRequestRole: "1",
		model.FieldKickBanRole:         "2",
		model.FieldWhitelistRole:       "3",
		model.FieldLogChannel:          "4",
	}
	for f, v := range fields {
		if err := s.SetModerationField(ctx, guildID, f, v); err != nil {
			t.Fatalf("Set %s: %v", f, err)
		}
	}
	if err := s.SetModerationField(ctx, guildID, model.ConfigField("guild_id"), "x"); err == nil {
		t.Errorf("setting an unknown field should fail")
	}

	cfg, err = s.GetModerationConfig(ctx, guildID)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Configured() {
		t.Errorf("config should be complete: %+v", cfg)
	}
	for f, v := range fields {
		if cfg.Get(f) != v {
			t.Errorf("%s = %q, want %q", f, cfg.Get(f), v)
		}
	}
	missing := cfg.MissingChannels()
	if len(missing) != 2 {
		t.Errorf("missing channels = %v, want ban request and proofs", missing)
	}
}

func TestAFKStore(t *testing.T) {
	s, err := OpenAFKStore(filepath.Join(t.TempDir(), "afk.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if got, err := s.Get(userID); err != nil || got != nil {
		t.Fatalf("Get before Set = %+v, %v", got, err)
	}
	if ok, err := s.AddMention(userID, model.AFKMention{AuthorID: modID}); err != nil || ok {
		t.Fatalf("AddMention for non-AFK user = %v, %v", ok, err)
	}

	since := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := s.Set(model.AFKStatus{UserID: userID, Status: "lunch", Since: since}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if ok, err := s.AddMention(userID, model.AFKMention{AuthorID: modID, At: since.Add(time.Minute)}); err != nil || !ok {
			t.Fatalf("AddMention = %v, %v", ok, err)
		}
	}

	got, err := s.Get(userID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != "lunch" || !got.Since.Equal(since) || len(got.Mentions) != 2 {
		t.Errorf("unexpected status %+v", got)
	}

	cleared, err := s.Clear(userID)
	if err != nil || cleared == nil || len(cleared.Mentions) != 2 {
		t.Fatalf("Clear = %+v, %v", cleared, err)
	}
	if again, _ := s.Clear(userID); again != nil {
		t.Errorf("second Clear returned %+v", again)
	}
}

func TestInitReopensExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "moderation.db")
	ctx := context.Background()

	s, err := Init(path)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	c := sampleCase("AB12CD", model.KindRequestBan, 100)
	if err := s.InsertCase(ctx, c); err != nil {
		t.Fatal(err)
	}
	if err := s.SetLogMessage(ctx, c.CaseID, model.MessageRef{ChannelID: "1", MessageID: "2"}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetRequestMessage(ctx, c.CaseID, model.MessageRef{ChannelID: "3", MessageID: "4"}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Init(path)
	if err != nil {
		t.Fatalf("second Init: %v", err)
	}
	defer s.Close()
	got, err := s.GetCase(ctx, c.CaseID)
	if err != nil || got == nil {
		t.Fatalf("GetCase = (%v, %v)", got, err)
	}
	if ref := got.LogRef(); ref == nil || ref.MessageID != "2" {
		t.Errorf("log ref = %+v", ref)
	}
	if ref := got.RequestRef(); ref == nil || ref.ChannelID != "3" || ref.MessageID != "4" {
		t.Errorf("request ref = %+v", ref)
	}
}
