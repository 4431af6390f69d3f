package utils

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
)

const (
	PageActionPrev    = "prev"
	PageActionNext    = "next"
	PageActionDismiss = "dismiss"
)

var (
	ErrSessionEnded = errors.New("pagination session ended")
	ErrNotOwner     = errors.New("only the command author can use these controls")
)

// CreatePaginationComponents creates previous / next / dismiss buttons for a session.
// currentPage is zero-based. Returns nil when there is nothing to page through.
func CreatePaginationComponents(currentPage, totalPages int, customIDPrefix, sessionID string) []discordgo.MessageComponent {
	if totalPages <= 1 {
		return nil
	}
	id := func(action string) string {
		return fmt.Sprintf("%s:%s:%s", customIDPrefix, action, sessionID)
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Previous",
					Style:    discordgo.PrimaryButton,
					Disabled: currentPage == 0,
					CustomID: id(PageActionPrev),
				},
				discordgo.Button{
					Label:    fmt.Sprintf("%d/%d", currentPage+1, totalPages),
					Style:    discordgo.SecondaryButton,
					Disabled: true,
					CustomID: id("page"),
				},
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.PrimaryButton,
					Disabled: currentPage >= totalPages-1,
					CustomID: id(PageActionNext),
				},
				discordgo.Button{
					Label:    "Dismiss",
					Style:    discordgo.DangerButton,
					CustomID: id(PageActionDismiss),
				},
			},
		},
	}
}

// ParsePaginationCustomID splits "<prefix>:<action>:<session>".
func ParsePaginationCustomID(customID string) (action, sessionID string, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// PageRender draws one zero-based page.
type PageRender func(page int) *discordgo.MessageEmbed

type pageSession struct {
	owner  string
	page   int
	pages  int
	render PageRender
	onEnd  func(last *discordgo.MessageEmbed)
	ttl    time.Duration
	timer  *time.Timer
}

// PageView is what a message should show after a click.
type PageView struct {
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
	Ended      bool
}

// Paginator tracks interactive page sessions. Each session is owned by one user and ends on
// dismiss or after its inactivity timeout, whichever comes first.
type Paginator struct {
	prefix   string
	mu       sync.Mutex
	sessions map[string]*pageSession
}

func NewPaginator(customIDPrefix string) *Paginator {
	return &Paginator{
		prefix:   customIDPrefix,
		sessions: make(map[string]*pageSession),
	}
}

// Prefix is the custom-id prefix of this paginator's buttons.
func (p *Paginator) Prefix() string {
	return p.prefix
}

// Start opens a session showing page 0 and returns its first view. Single-page content gets
// no session and no components. onEnd runs once when the session times out.
func (p *Paginator) Start(ownerID string, pages int, ttl time.Duration, render PageRender, onEnd func(last *discordgo.MessageEmbed)) (string, PageView) {
	first := render(0)
	if pages <= 1 {
		return "", PageView{Embed: first}
	}

	id := uuid.NewString()
	sess := &pageSession{owner: ownerID, pages: pages, render: render, onEnd: onEnd, ttl: ttl}

	p.mu.Lock()
	p.sessions[id] = sess
	sess.timer = time.AfterFunc(ttl, func() { p.expire(id) })
	p.mu.Unlock()

	return id, PageView{Embed: first, Components: CreatePaginationComponents(0, pages, p.prefix, id)}
}

// Click applies a button press. Unknown or ended sessions return ErrSessionEnded; presses by
// anyone but the owner return ErrNotOwner and change nothing.
func (p *Paginator) Click(sessionID, userID, action string) (PageView, error) {
	p.mu.Lock()
	sess, ok := p.sessions[sessionID]
	if !ok {
		p.mu.Unlock()
		return PageView{}, ErrSessionEnded
	}
	if sess.owner != userID {
		p.mu.Unlock()
		return PageView{}, ErrNotOwner
	}

	switch action {
	case PageActionDismiss:
		sess.timer.Stop()
		delete(p.sessions, sessionID)
		page := sess.page
		p.mu.Unlock()
		return PageView{Embed: sess.render(page), Ended: true}, nil
	case PageActionPrev:
		if sess.page > 0 {
			sess.page--
		}
	case PageActionNext:
		if sess.page < sess.pages-1 {
			sess.page++
		}
	default:
		p.mu.Unlock()
		return PageView{}, fmt.Errorf("unknown page action %q", action)
	}
	sess.timer.Reset(sess.ttl)
	page, pages := sess.page, sess.pages
	p.mu.Unlock()

	return PageView{
		Embed:      sess.render(page),
		Components: CreatePaginationComponents(page, pages, p.prefix, sessionID),
	}, nil
}

func (p *Paginator) expire(sessionID string) {
	p.mu.Lock()
	sess, ok := p.sessions[sessionID]
	if ok {
		delete(p.sessions, sessionID)
	}
	p.mu.Unlock()
	if !ok || sess.onEnd == nil {
		return
	}
	sess.onEnd(sess.render(sess.page))
}

// Active reports how many sessions are open.
func (p *Paginator) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sessions)
}

// Stop ends every session without running their callbacks.
func (p *Paginator) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, sess := range p.sessions {
		sess.timer.Stop()
		delete(p.sessions, id)
	}
}
