package moderation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/model"
	mod "modcase-bot/moderation"
	"modcase-bot/utils"
)

// Platform implements the moderation ports on a discordgo session.
type Platform struct {
	s      *discordgo.Session
	client *http.Client
}

func NewPlatform(s *discordgo.Session) *Platform {
	return &Platform{s: s, client: utils.AttachmentClient}
}

var (
	_ mod.Members  = (*Platform)(nil)
	_ mod.Enforcer = (*Platform)(nil)
	_ mod.Notifier = (*Platform)(nil)
)

func isNotFound(err error) bool {
	var restErr *discordgo.RESTError
	return errors.As(err, &restErr) && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

func (p *Platform) Member(ctx context.Context, guildID, userID string) (*model.Member, error) {
	m, err := p.s.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &model.Member{
		UserID:        userID,
		Roles:         m.Roles,
		Administrator: p.isAdministrator(guildID, userID, m.Roles),
	}, nil
}

// isAdministrator resolves the member's guild-wide permissions from its roles.
func (p *Platform) isAdministrator(guildID, userID string, roleIDs []string) bool {
	guild, err := p.s.State.Guild(guildID)
	if err != nil {
		guild, err = p.s.Guild(guildID)
		if err != nil {
			log.Warn().Err(err).Str("guild_id", guildID).Msg("could not resolve guild for permission check")
			return false
		}
	}
	if guild.OwnerID == userID {
		return true
	}
	roles := guild.Roles
	if len(roles) == 0 {
		if roles, err = p.s.GuildRoles(guildID); err != nil {
			return false
		}
	}
	held := make(map[string]struct{}, len(roleIDs)+1)
	held[guildID] = struct{}{} // @everyone
	for _, id := range roleIDs {
		held[id] = struct{}{}
	}
	for _, r := range roles {
		if _, ok := held[r.ID]; ok && r.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func (p *Platform) Timeout(ctx context.Context, guildID, userID string, until time.Time, reason string) error {
	return p.s.GuildMemberTimeout(guildID, userID, &until, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
}

func (p *Platform) Kick(ctx context.Context, guildID, userID, reason string) error {
	return p.s.GuildMemberDeleteWithReason(guildID, userID, utils.Truncate(reason, 512), discordgo.WithContext(ctx))
}

func (p *Platform) Ban(ctx context.Context, guildID, userID, reason string) error {
	return p.s.GuildBanCreateWithReason(guildID, userID, utils.Truncate(reason, 512), 0, discordgo.WithContext(ctx))
}

func (p *Platform) Unban(ctx context.Context, guildID, userID, reason string) error {
	return p.s.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(utils.Truncate(reason, 512)))
}

func (p *Platform) guildName(guildID string) string {
	if g, err := p.s.State.Guild(guildID); err == nil {
		return g.Name
	}
	if g, err := p.s.Guild(guildID); err == nil {
		return g.Name
	}
	return "the server"
}

func (p *Platform) NotifyTarget(ctx context.Context, c model.Case) error {
	return utils.SendPrivateEmbedMessage(p.s, c.TargetUserID, DMEmbed(c, p.guildName(c.GuildID)))
}

func (p *Platform) PostAuditLog(ctx context.Context, channelID string, c model.Case) (*model.MessageRef, error) {
	msg, err := p.s.ChannelMessageSendEmbed(channelID, AuditLogEmbed(c), discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

func (p *Platform) UpdateAuditLog(ctx context.Context, ref model.MessageRef, change mod.LogChange) error {
	msg, err := p.s.ChannelMessage(ref.ChannelID, ref.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	if len(msg.Embeds) == 0 {
		return fmt.Errorf("audit log message %s has no embed", ref.MessageID)
	}
	embed := ApplyLogChange(msg.Embeds[0], change)
	_, err = p.s.ChannelMessageEditEmbed(ref.ChannelID, ref.MessageID, embed, discordgo.WithContext(ctx))
	return err
}

// LocateAuditLog pages backwards through the channel looking for the case's footer.
func (p *Platform) LocateAuditLog(ctx context.Context, channelID, caseID string, limit int) (*model.MessageRef, error) {
	needle := FooterPrefix + caseID
	before := ""
	for scanned := 0; scanned < limit; {
		batch := min(100, limit-scanned)
		msgs, err := p.s.ChannelMessages(channelID, batch, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return nil, err
		}
		for _, m := range msgs {
			for _, e := range m.Embeds {
				if e.Footer != nil && strings.Contains(e.Footer.Text, needle) {
					return &model.MessageRef{ChannelID: channelID, MessageID: m.ID}, nil
				}
			}
		}
		if len(msgs) < batch {
			break
		}
		scanned += len(msgs)
		before = msgs[len(msgs)-1].ID
	}
	return nil, nil
}

func (p *Platform) PostBanRequest(ctx context.Context, channelID string, c model.Case) (*model.MessageRef, error) {
	msg, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{BanRequestEmbed(c)},
		Components: BanRequestComponents(c.CaseID),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

func (p *Platform) CloseBanRequest(ctx context.Context, ref model.MessageRef, c model.Case) error {
	embeds := []*discordgo.MessageEmbed{BanRequestEmbed(c)}
	components := []discordgo.MessageComponent{}
	_, err := p.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         ref.MessageID,
		Channel:    ref.ChannelID,
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	return err
}

func (p *Platform) PostProofInstruction(ctx context.Context, channelID, issuerID string, c model.Case) (*model.MessageRef, error) {
	msg, err := p.s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>", issuerID),
		Embeds:  []*discordgo.MessageEmbed{ProofInstructionEmbed(c)},
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{issuerID},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return &model.MessageRef{ChannelID: msg.ChannelID, MessageID: msg.ID}, nil
}

// PublishProofs re-uploads the files as a reply to ref so their URLs outlive the original message.
func (p *Platform) PublishProofs(ctx context.Context, ref model.MessageRef, c model.Case, files []model.Attachment) ([]string, error) {
	var uploads []*discordgo.File
	for _, f := range files {
		data, err := utils.DownloadAttachment(ctx, p.client, f.URL)
		if err != nil {
			log.Warn().Err(err).Str("case_id", c.CaseID).Str("file", f.Filename).Msg("skipping proof file")
			continue
		}
		uploads = append(uploads, &discordgo.File{
			Name:        f.Filename,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(data),
		})
	}
	if len(uploads) == 0 {
		return nil, fmt.Errorf("none of the %d proof files could be downloaded", len(files))
	}

	msg, err := p.s.ChannelMessageSendComplex(ref.ChannelID, &discordgo.MessageSend{
		Content:   fmt.Sprintf("Proofs for case `%s`", c.CaseID),
		Files:     uploads,
		Reference: &discordgo.MessageReference{ChannelID: ref.ChannelID, MessageID: ref.MessageID},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		urls = append(urls, a.URL)
	}
	return urls, nil
}

func (p *Platform) ProofsAttached(ctx context.Context, req model.PendingProofRequest, urls []string) error {
	embed := ProofResultEmbed(req.CaseID, fmt.Sprintf("✅ Attached %d proof file(s) to case `%s`.", len(urls), req.CaseID), utils.ColorSuccess)
	_, err := p.s.ChannelMessageEditEmbed(req.ExpectedChannelID, req.InstructionMessageID, embed, discordgo.WithContext(ctx))
	return err
}

func (p *Platform) ProofRequestExpired(ctx context.Context, req model.PendingProofRequest) error {
	embed := ProofResultEmbed(req.CaseID, fmt.Sprintf("⌛ No files were received for case `%s`. Run /attachproofs again.", req.CaseID), utils.ColorNeutral)
	_, err := p.s.ChannelMessageEditEmbed(req.ExpectedChannelID, req.InstructionMessageID, embed, discordgo.WithContext(ctx))
	return err
}

func (p *Platform) ProofsFailed(ctx context.Context, req model.PendingProofRequest, cause error) error {
	embed := ProofResultEmbed(req.CaseID, fmt.Sprintf("❌ Proofs for case `%s` were not saved: %s", req.CaseID, ErrorMessage(cause)), utils.ColorDanger)
	_, err := p.s.ChannelMessageEditEmbed(req.ExpectedChannelID, req.InstructionMessageID, embed, discordgo.WithContext(ctx))
	return err
}

// ActorFromInvocation builds the moderation actor for whoever ran a command.
func (p *Platform) ActorFromInvocation(inv *utils.Invocation) model.Actor {
	actor := model.Actor{GuildID: inv.GuildID, UserID: inv.UserID(), Roles: inv.Roles()}
	if inv.IsSlash() {
		if inv.Member != nil {
			actor.Administrator = inv.Member.Permissions&discordgo.PermissionAdministrator != 0
		}
		return actor
	}
	actor.Administrator = p.isAdministrator(inv.GuildID, actor.UserID, actor.Roles)
	return actor
}

// ActorFromInteraction builds the actor for a component or modal interaction.
func ActorFromInteraction(i *discordgo.InteractionCreate) model.Actor {
	actor := model.Actor{GuildID: i.GuildID, UserID: utils.InteractionUserID(i)}
	if i.Member != nil {
		actor.Roles = i.Member.Roles
		actor.Administrator = i.Member.Permissions&discordgo.PermissionAdministrator != 0
		actor.ManageGuild = i.Member.Permissions&discordgo.PermissionManageGuild != 0
	}
	return actor
}
