// Package bot answers the scripted pre-chat menu. Only the "human" option
// touches storage, by opening a support session.
package bot

import (
	"context"
	"strings"

	"flex-design-backend/internal/config"
	"flex-design-backend/internal/model"
	"flex-design-backend/internal/policy"
)

const (
	OptionPricing  = "pricing"
	OptionServices = "services"
	OptionHuman    = "human"
)

var menuOrder = []string{OptionPricing, OptionServices, OptionHuman}

type ErrorCode string

const (
	ErrorCodeValidation ErrorCode = "validation_error"
	ErrorCodeInternal   ErrorCode = "internal_error"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// SessionOpener opens a live support session for a customer.
type SessionOpener interface {
	CreateSession(ctx context.Context, caller policy.Identity) (model.SupportSessionItem, error)
}

type MenuOption struct {
	ID    string
	Label string
}

type Menu struct {
	Language string
	Welcome  string
	Options  []MenuOption
}

type Reply struct {
	Language      string
	Option        string
	Text          string
	RequiresLogin bool
	Session       *model.SupportSessionItem
}

type Service struct {
	site     *config.Site
	sessions SessionOpener
}

func New(site *config.Site, sessions SessionOpener) *Service {
	return &Service{site: site, sessions: sessions}
}

func (s *Service) Menu(lang string) Menu {
	texts, resolved := s.site.BotTextsFor(normalizeLang(lang))
	options := make([]MenuOption, 0, len(menuOrder))
	for _, id := range menuOrder {
		options = append(options, MenuOption{ID: id, Label: texts.Options[id]})
	}
	return Menu{Language: resolved, Welcome: texts.Welcome, Options: options}
}

// Reply answers one menu choice. caller is nil for anonymous visitors.
func (s *Service) Reply(ctx context.Context, caller *policy.Identity, option, lang string) (Reply, error) {
	texts, resolved := s.site.BotTextsFor(normalizeLang(lang))
	option = strings.ToLower(strings.TrimSpace(option))
	reply := Reply{Language: resolved, Option: option}

	switch option {
	case OptionPricing:
		reply.Text = texts.Pricing
	case OptionServices:
		reply.Text = texts.Services
	case OptionHuman:
		if caller == nil || caller.UserID == "" {
			reply.Text = texts.HumanErr
			reply.RequiresLogin = true
			return reply, nil
		}
		session, err := s.sessions.CreateSession(ctx, *caller)
		if err != nil {
			return Reply{}, newError(ErrorCodeInternal, "failed to connect to support", err)
		}
		reply.Text = texts.ConnectMsg
		reply.Session = &session
	default:
		return Reply{}, newError(ErrorCodeValidation, "unknown bot option", nil)
	}
	return reply, nil
}

func normalizeLang(lang string) string {
	return strings.ToLower(strings.TrimSpace(lang))
}
