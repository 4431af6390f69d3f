package moderation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"modcase-bot/model"
)

const (
	testGuild     = "100000000000000001"
	roleTier1     = "200000000000000001"
	roleTier2     = "200000000000000002"
	roleStaff     = "200000000000000003"
	logChannel    = "300000000000000001"
	requestChan   = "300000000000000002"
	proofsChannel = "300000000000000003"
	modID         = "400000000000000001"
	otherModID    = "400000000000000002"
	userA         = "500000000000000001"
	userB         = "500000000000000002"
	userC         = "500000000000000003"
)

var errPlatform = errors.New("platform unavailable")

func configured() *model.GuildModerationConfig {
	return &model.GuildModerationConfig{
		GuildID:             testGuild,
		WarnMuteRequestRole: roleTier1,
		KickBanRole:         roleTier2,
		WhitelistRole:       roleStaff,
		LogChannel:          logChannel,
		BanRequestChannel:   requestChan,
		ActionProofsChannel: proofsChannel,
	}
}

func moderator(id string, roles ...string) model.Actor {
	return model.Actor{GuildID: testGuild, UserID: id, Roles: roles}
}

type fakeConfigs struct {
	mu      sync.Mutex
	configs map[string]*model.GuildModerationConfig
}

func newFakeConfigs(cfgs ...*model.GuildModerationConfig) *fakeConfigs {
	f := &fakeConfigs{configs: make(map[string]*model.GuildModerationConfig)}
	for _, c := range cfgs {
		f.configs[c.GuildID] = c
	}
	return f
}

func (f *fakeConfigs) GetModerationConfig(_ context.Context, guildID string) (*model.GuildModerationConfig, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.configs[guildID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeConfigs) SetModerationField(_ context.Context, guildID string, field model.ConfigField, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.configs[guildID]
	if !ok {
		c = &model.GuildModerationConfig{GuildID: guildID}
		f.configs[guildID] = c
	}
	switch field {
	case model.FieldWarnMuteRequestRole:
		c.WarnMuteRequestRole = value
	case model.FieldKickBanRole:
		c.KickBanRole = value
	case model.FieldWhitelistRole:
		c.WhitelistRole = value
	case model.FieldLogChannel:
		c.LogChannel = value
	case model.FieldBanRequestChannel:
		c.BanRequestChannel = value
	case model.FieldActionProofsChannel:
		c.ActionProofsChannel = value
	default:
		return errors.New("unknown field")
	}
	return nil
}

type counterKey struct{ guild, user string }

type fakeCases struct {
	mu       sync.Mutex
	cases    map[string]*model.Case
	order    []string
	counts   map[counterKey]int
	failSave bool
}

func newFakeCases() *fakeCases {
	return &fakeCases{cases: make(map[string]*model.Case), counts: make(map[counterKey]int)}
}

func (f *fakeCases) InsertCase(_ context.Context, c *model.Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("disk full")
	}
	if _, ok := f.cases[c.CaseID]; ok {
		return fmt.Errorf("duplicate case id %s", c.CaseID)
	}
	cp := *c
	f.cases[c.CaseID] = &cp
	f.order = append(f.order, c.CaseID)
	return nil
}

func (f *fakeCases) GetCase(_ context.Context, caseID string) (*model.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cases[caseID]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCases) FindCases(_ context.Context, filter model.CaseFilter) ([]model.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Case
	for i := len(f.order) - 1; i >= 0; i-- {
		c, ok := f.cases[f.order[i]]
		if !ok {
			continue
		}
		if filter.GuildID != "" && c.GuildID != filter.GuildID {
			continue
		}
		if filter.TargetUserID != "" && c.TargetUserID != filter.TargetUserID {
			continue
		}
		if filter.IssuerID != "" && c.IssuerID != filter.IssuerID {
			continue
		}
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (f *fakeCases) UpdateReason(_ context.Context, caseID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cases[caseID]; ok {
		c.Reason = reason
	}
	return nil
}

func (f *fakeCases) SetProofs(_ context.Context, caseID string, proofs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cases[caseID]; ok {
		c.Proofs = append(model.StringList(nil), proofs...)
	}
	return nil
}

func (f *fakeCases) SetLogMessage(_ context.Context, caseID string, ref model.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cases[caseID]; ok {
		c.LogChannelID, c.LogMessageID = ref.ChannelID, ref.MessageID
	}
	return nil
}

func (f *fakeCases) SetRequestMessage(_ context.Context, caseID string, ref model.MessageRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cases[caseID]; ok {
		c.RequestChannelID, c.RequestMessageID = ref.ChannelID, ref.MessageID
	}
	return nil
}

func (f *fakeCases) ResolveBanRequest(_ context.Context, caseID string, state model.RequestState, approverID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.cases[caseID]
	if !ok || c.RequestState != model.RequestPending {
		return false, nil
	}
	c.RequestState = state
	c.ApproverID = approverID
	c.Approved = state == model.RequestApproved
	return true, nil
}

func (f *fakeCases) ReopenBanRequest(_ context.Context, caseID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.cases[caseID]; ok {
		c.RequestState = model.RequestPending
		c.ApproverID = ""
		c.Approved = false
	}
	return nil
}

func (f *fakeCases) DeleteCase(_ context.Context, caseID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.cases[caseID]; !ok {
		return false, nil
	}
	delete(f.cases, caseID)
	return true, nil
}

func (f *fakeCases) IncrementCaseCount(_ context.Context, guildID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[counterKey{guildID, userID}]++
	return nil
}

func (f *fakeCases) DecrementCaseCount(_ context.Context, guildID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := counterKey{guildID, userID}
	if f.counts[k] > 0 {
		f.counts[k]--
	}
	return nil
}

func (f *fakeCases) CaseCount(_ context.Context, guildID, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[counterKey{guildID, userID}], nil
}

func (f *fakeCases) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cases)
}

func (f *fakeCases) get(caseID string) model.Case {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.cases[caseID]
}

type fakeMembers struct {
	members map[string]*model.Member
}

func (f *fakeMembers) Member(_ context.Context, _, userID string) (*model.Member, error) {
	if m, ok := f.members[userID]; ok {
		return m, nil
	}
	return nil, nil
}

type enforcement struct {
	action string
	userID string
}

type fakeEnforcer struct {
	mu    sync.Mutex
	calls []enforcement
	fail  map[string]error
}

func (f *fakeEnforcer) record(action, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, enforcement{action, userID})
	if err, ok := f.fail[action]; ok {
		return err
	}
	return nil
}

func (f *fakeEnforcer) Timeout(_ context.Context, _, userID string, _ time.Time, _ string) error {
	return f.record("timeout", userID)
}

func (f *fakeEnforcer) Kick(_ context.Context, _, userID, _ string) error {
	return f.record("kick", userID)
}

func (f *fakeEnforcer) Ban(_ context.Context, _, userID, _ string) error {
	return f.record("ban", userID)
}

func (f *fakeEnforcer) Unban(_ context.Context, _, userID, _ string) error {
	return f.record("unban", userID)
}

func (f *fakeEnforcer) count(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.action == action {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu         sync.Mutex
	dms        []string
	logs       []model.Case
	requests   []model.Case
	closed     []model.Case
	changes    []LogChange
	published  []model.MessageRef
	acks       []model.PendingProofRequest
	failures   []error
	expired    chan model.PendingProofRequest
	nextMsg    int
	dmErr      error
	publishErr error
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{expired: make(chan model.PendingProofRequest, 4)}
}

func (f *fakeNotifier) msgID() string {
	f.nextMsg++
	return fmt.Sprintf("9000000000000%05d", f.nextMsg)
}

func (f *fakeNotifier) NotifyTarget(_ context.Context, c model.Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, c.TargetUserID)
	return nil
}

func (f *fakeNotifier) PostAuditLog(_ context.Context, channelID string, c model.Case) (*model.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, c)
	return &model.MessageRef{ChannelID: channelID, MessageID: f.msgID()}, nil
}

func (f *fakeNotifier) UpdateAuditLog(_ context.Context, _ model.MessageRef, change LogChange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.changes = append(f.changes, change)
	return nil
}

func (f *fakeNotifier) LocateAuditLog(_ context.Context, _, _ string, _ int) (*model.MessageRef, error) {
	return nil, nil
}

func (f *fakeNotifier) PostBanRequest(_ context.Context, channelID string, c model.Case) (*model.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &model.MessageRef{ChannelID: channelID, MessageID: f.msgID()}, nil
}

func (f *fakeNotifier) CloseBanRequest(_ context.Context, _ model.MessageRef, c model.Case) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = append(f.closed, c)
	return nil
}

func (f *fakeNotifier) PostProofInstruction(_ context.Context, channelID, _ string, _ model.Case) (*model.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &model.MessageRef{ChannelID: channelID, MessageID: f.msgID()}, nil
}

func (f *fakeNotifier) PublishProofs(_ context.Context, ref model.MessageRef, _ model.Case, files []model.Attachment) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.publishErr != nil {
		return nil, f.publishErr
	}
	f.published = append(f.published, ref)
	urls := make([]string, 0, len(files))
	for _, file := range files {
		urls = append(urls, "https://cdn.example/"+ref.MessageID+"/"+file.Filename)
	}
	return urls, nil
}

func (f *fakeNotifier) ProofsAttached(_ context.Context, req model.PendingProofRequest, _ []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, req)
	return nil
}

func (f *fakeNotifier) ProofsFailed(_ context.Context, _ model.PendingProofRequest, cause error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, cause)
	return nil
}

func (f *fakeNotifier) ProofRequestExpired(_ context.Context, req model.PendingProofRequest) error {
	f.expired <- req
	return nil
}

type harness struct {
	svc      *Service
	configs  *fakeConfigs
	cases    *fakeCases
	members  *fakeMembers
	enforcer *fakeEnforcer
	notifier *fakeNotifier
	clock    *fakeClock
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newHarness(cfgs ...*model.GuildModerationConfig) *harness {
	h := &harness{
		configs:  newFakeConfigs(cfgs...),
		cases:    newFakeCases(),
		members:  &fakeMembers{members: make(map[string]*model.Member)},
		enforcer: &fakeEnforcer{fail: make(map[string]error)},
		notifier: newFakeNotifier(),
		clock:    &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
	}
	limiter := NewLimiter(DefaultActionLimit, DefaultActionLimit, DefaultRateWindow)
	limiter.now = h.clock.Now
	h.svc = NewService(Deps{
		Configs:  h.configs,
		Cases:    h.cases,
		Members:  h.members,
		Enforcer: h.enforcer,
		Notifier: h.notifier,
		Limiter:  limiter,
	})
	h.svc.now = h.clock.Now
	return h
}

// seq makes case ids deterministic.
func (h *harness) seq(ids ...string) {
	i := 0
	h.svc.newID = func() string {
		id := ids[i%len(ids)]
		i++
		return id
	}
}
