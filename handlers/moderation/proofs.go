package moderation

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"modcase-bot/commands"
	"modcase-bot/model"
	"modcase-bot/utils"
)

// AttachProofs posts the instruction message the issuer replies to with proof files.
func (h *Handler) AttachProofs(inv *utils.Invocation) {
	caseID := inv.OptionString(commands.OptCaseID)
	if !inv.IsSlash() {
		caseID, _ = utils.NextToken(inv.Args)
	}

	ctx, cancel := commandContext()
	defer cancel()

	req, err := h.proofs.Initiate(ctx, h.actor(inv), caseID)
	if err != nil {
		inv.ReplyError(ErrorMessage(err))
		return
	}
	link := fmt.Sprintf("https://discord.com/channels/%s/%s/%s", req.GuildID, req.ExpectedChannelID, req.InstructionMessageID)
	inv.Reply(fmt.Sprintf("📎 Reply to [this message](%s) in <#%s> with your proof files before <t:%d:t>.",
		link, req.ExpectedChannelID, req.ExpiresAt.Unix()))
}

// UploadFromMessage converts a message into an upload, or reports false if it cannot
// answer a proof request.
func UploadFromMessage(m *discordgo.Message) (model.Upload, bool) {
	if m.Author == nil || m.Author.Bot || len(m.Attachments) == 0 || m.MessageReference == nil {
		return model.Upload{}, false
	}
	up := model.Upload{
		MessageID:           m.ID,
		ChannelID:           m.ChannelID,
		AuthorID:            m.Author.ID,
		ReferencedMessageID: m.MessageReference.MessageID,
	}
	for _, a := range m.Attachments {
		up.Attachments = append(up.Attachments, model.Attachment{
			ID:          a.ID,
			Filename:    a.Filename,
			URL:         a.URL,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	return up, true
}

// HandleUpload feeds replies with attachments to the proof correlator.
func (h *Handler) HandleUpload(s *discordgo.Session, m *discordgo.MessageCreate) {
	up, ok := UploadFromMessage(m.Message)
	if !ok {
		return
	}
	ctx, cancel := commandContext()
	defer cancel()

	caseID, matched, err := h.proofs.Match(ctx, up)
	if !matched {
		return
	}
	if err != nil {
		// The instruction message already carries the failure.
		return
	}
	if err := s.MessageReactionAdd(m.ChannelID, m.ID, "✅"); err != nil && !strings.Contains(err.Error(), "Unknown Message") {
		log.Warn().Err(err).Str("case_id", caseID).Msg("failed to acknowledge proof upload")
	}
}
