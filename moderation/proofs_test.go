package moderation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"modcase-bot/model"
)

func createWarn(t *testing.T, h *harness, issuer string) model.Case {
	t.Helper()
	out, err := h.svc.CreateCase(context.Background(), CaseRequest{
		Issuer:       moderator(issuer, roleTier1),
		TargetUserID: userA,
		Kind:         model.KindWarn,
		Reason:       "spam",
	})
	if err != nil {
		t.Fatalf("CreateCase: %v", err)
	}
	h.svc.Drain()
	return out.Case
}

func screenshot(name string) model.Attachment {
	return model.Attachment{ID: "1", Filename: name, URL: "https://uploads.example/" + name}
}

func TestCorrelatorMatch(t *testing.T) {
	h := newHarness(configured())
	c := createWarn(t, h, modID)
	corr := NewCorrelator(h.svc, time.Minute)
	defer corr.Stop()
	ctx := context.Background()

	req, err := corr.Initiate(ctx, moderator(modID, roleTier1), strings.ToLower(c.CaseID))
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}
	if req.ExpectedChannelID != proofsChannel || req.State != model.ProofInitiated {
		t.Fatalf("unexpected request %+v", req)
	}

	upload := model.Upload{
		MessageID:           "800000000000000001",
		ChannelID:           proofsChannel,
		AuthorID:            modID,
		ReferencedMessageID: req.InstructionMessageID,
		Attachments:         []model.Attachment{screenshot("a.png"), screenshot("b.png")},
	}

	ignored := []struct {
		name   string
		mutate func(u *model.Upload)
	}{
		{"different user", func(u *model.Upload) { u.AuthorID = otherModID }},
		{"different channel", func(u *model.Upload) { u.ChannelID = logChannel }},
		{"not a reply", func(u *model.Upload) { u.ReferencedMessageID = "" }},
		{"reply to something else", func(u *model.Upload) { u.ReferencedMessageID = "800000000000000099" }},
		{"no files", func(u *model.Upload) { u.Attachments = nil }},
	}
	for _, tt := range ignored {
		u := upload
		tt.mutate(&u)
		if _, ok, _ := corr.Match(ctx, u); ok {
			t.Errorf("%s: upload should be ignored", tt.name)
		}
	}
	if state, _ := corr.State(req.InstructionMessageID); state != model.ProofInitiated {
		t.Fatalf("state = %q after ignored uploads, want initiated", state)
	}

	caseID, ok, err := corr.Match(ctx, upload)
	if !ok || err != nil || caseID != c.CaseID {
		t.Fatalf("Match = (%q, %v, %v), want (%q, true, nil)", caseID, ok, err, c.CaseID)
	}
	if state, _ := corr.State(req.InstructionMessageID); state != model.ProofResolved {
		t.Errorf("state = %q, want resolved", state)
	}

	stored := h.cases.get(c.CaseID)
	if len(stored.Proofs) != 2 || !strings.HasPrefix(stored.Proofs[0], "https://cdn.example/") {
		t.Errorf("proofs = %v, want the published URLs", stored.Proofs)
	}
	if len(h.notifier.acks) != 1 {
		t.Errorf("acks = %d, want 1", len(h.notifier.acks))
	}

	// Later uploads have no effect.
	upload.Attachments = []model.Attachment{screenshot("c.png")}
	if _, ok, _ := corr.Match(ctx, upload); ok {
		t.Errorf("second upload matched a resolved request")
	}
	if got := h.cases.get(c.CaseID).Proofs; len(got) != 2 {
		t.Errorf("proofs changed after resolution: %v", got)
	}

	if n := corr.Sweep(); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
	if _, ok := corr.State(req.InstructionMessageID); ok {
		t.Errorf("resolved request still tracked after sweep")
	}
}

func TestCorrelatorExpiry(t *testing.T) {
	h := newHarness(configured())
	c := createWarn(t, h, modID)
	corr := NewCorrelator(h.svc, 20*time.Millisecond)
	defer corr.Stop()

	req, err := corr.Initiate(context.Background(), moderator(modID, roleTier1), c.CaseID)
	if err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-h.notifier.expired:
		if got.CaseID != c.CaseID {
			t.Errorf("expired case = %s, want %s", got.CaseID, c.CaseID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expiry was never announced")
	}

	if state, _ := corr.State(req.InstructionMessageID); state != model.ProofExpired {
		t.Errorf("state = %q, want expired", state)
	}
	_, ok, _ := corr.Match(context.Background(), model.Upload{
		ChannelID:           proofsChannel,
		AuthorID:            modID,
		ReferencedMessageID: req.InstructionMessageID,
		Attachments:         []model.Attachment{screenshot("late.png")},
	})
	if ok {
		t.Errorf("upload after expiry matched")
	}
	if got := h.cases.get(c.CaseID).Proofs; len(got) != 0 {
		t.Errorf("proofs = %v after expiry, want none", got)
	}
}

func TestCorrelatorMatchCaseDeleted(t *testing.T) {
	h := newHarness(configured())
	c := createWarn(t, h, modID)
	corr := NewCorrelator(h.svc, time.Minute)
	defer corr.Stop()
	ctx := context.Background()

	req, err := corr.Initiate(ctx, moderator(modID, roleTier1), c.CaseID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.cases.DeleteCase(ctx, c.CaseID); err != nil {
		t.Fatal(err)
	}

	_, ok, err := corr.Match(ctx, model.Upload{
		ChannelID:           proofsChannel,
		AuthorID:            modID,
		ReferencedMessageID: req.InstructionMessageID,
		Attachments:         []model.Attachment{screenshot("a.png")},
	})
	if !ok {
		t.Fatal("upload for a deleted case should still end the request")
	}
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if state, _ := corr.State(req.InstructionMessageID); state != model.ProofFailed {
		t.Errorf("state = %q, want failed", state)
	}
	if len(h.notifier.acks) != 0 {
		t.Errorf("acks = %d, want none", len(h.notifier.acks))
	}
	if len(h.notifier.failures) != 1 || !errors.Is(h.notifier.failures[0], ErrNotFound) {
		t.Errorf("failures = %v, want one ErrNotFound", h.notifier.failures)
	}
	if n := corr.Sweep(); n != 1 {
		t.Errorf("swept %d, want 1", n)
	}
}

func TestCorrelatorDeadlineFollowsClock(t *testing.T) {
	h := newHarness(configured())
	c := createWarn(t, h, modID)
	corr := NewCorrelator(h.svc, time.Minute)
	corr.now = h.clock.Now
	defer corr.Stop()
	ctx := context.Background()

	req, err := corr.Initiate(ctx, moderator(modID, roleTier1), c.CaseID)
	if err != nil {
		t.Fatal(err)
	}
	h.clock.Advance(2 * time.Minute)

	_, ok, err := corr.Match(ctx, model.Upload{
		ChannelID:           proofsChannel,
		AuthorID:            modID,
		ReferencedMessageID: req.InstructionMessageID,
		Attachments:         []model.Attachment{screenshot("late.png")},
	})
	if ok || err != nil {
		t.Fatalf("Match = (%v, %v), want an ignored upload", ok, err)
	}
	if state, _ := corr.State(req.InstructionMessageID); state != model.ProofExpired {
		t.Errorf("state = %q, want expired", state)
	}
	select {
	case got := <-h.notifier.expired:
		if got.CaseID != c.CaseID {
			t.Errorf("expired case = %s, want %s", got.CaseID, c.CaseID)
		}
	default:
		t.Error("expiry was not announced")
	}
	if corr.Pending() != 0 {
		t.Errorf("pending = %d, want 0", corr.Pending())
	}
}

func TestCorrelatorInitiateErrors(t *testing.T) {
	noProofs := configured()
	noProofs.ActionProofsChannel = ""

	tests := []struct {
		name    string
		cfg     *model.GuildModerationConfig
		actor   model.Actor
		caseID  func(c model.Case) string
		wantErr error
	}{
		{"not the issuer", configured(), moderator(otherModID, roleTier1, roleTier2), func(c model.Case) string { return c.CaseID }, ErrForbidden},
		{"unknown case", configured(), moderator(modID, roleTier1), func(model.Case) string { return "QQQQQQ" }, ErrNotFound},
		{"no proofs channel", noProofs, moderator(modID, roleTier1), func(c model.Case) string { return c.CaseID }, ErrNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(tt.cfg)
			c := createWarn(t, h, modID)
			corr := NewCorrelator(h.svc, time.Minute)
			defer corr.Stop()

			_, err := corr.Initiate(context.Background(), tt.actor, tt.caseID(c))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if corr.Pending() != 0 {
				t.Errorf("failed initiate left a pending request")
			}
		})
	}
}

func TestAttachProofsReplaces(t *testing.T) {
	h := newHarness(configured())
	c := createWarn(t, h, modID)
	ctx := context.Background()

	if _, err := h.svc.AttachProofs(ctx, c.CaseID, []model.Attachment{screenshot("a.png"), screenshot("b.png")}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.AttachProofs(ctx, c.CaseID, []model.Attachment{screenshot("c.png")}); err != nil {
		t.Fatal(err)
	}
	got := h.cases.get(c.CaseID).Proofs
	if len(got) != 1 || !strings.HasSuffix(got[0], "c.png") {
		t.Errorf("proofs = %v, want only c.png", got)
	}
}

func TestAttachProofsFallsBackToUploadURLs(t *testing.T) {
	h := newHarness(configured())
	c := createWarn(t, h, modID)
	h.notifier.publishErr = errPlatform

	urls, err := h.svc.AttachProofs(context.Background(), c.CaseID, []model.Attachment{screenshot("a.png")})
	if err != nil {
		t.Fatal(err)
	}
	if len(urls) != 1 || urls[0] != "https://uploads.example/a.png" {
		t.Errorf("urls = %v, want the original upload URL", urls)
	}
}

func TestAttachProofsMirrorsBanRequest(t *testing.T) {
	h := newHarness(configured())
	c := newBanRequest(t, h)

	if _, err := h.svc.AttachProofs(context.Background(), c.CaseID, []model.Attachment{screenshot("a.png")}); err != nil {
		t.Fatal(err)
	}
	if len(h.notifier.published) != 2 {
		t.Fatalf("published %d times, want audit log and ban request", len(h.notifier.published))
	}
	if h.notifier.published[1].ChannelID != requestChan {
		t.Errorf("second publish went to %s, want %s", h.notifier.published[1].ChannelID, requestChan)
	}
}
