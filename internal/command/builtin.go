package command

import (
	"context"
	"errors"
	"net/http"

	"github.com/lethe-board/lethe/internal/config"
	"github.com/lethe-board/lethe/internal/danbooru"
	"github.com/lethe-board/lethe/internal/session"
)

// Searcher is the external image-tag search dependency.
type Searcher interface {
	RandomImage(ctx context.Context, tags []string) (string, error)
}

// Builtin returns the built-in commands in dispatch order:
// login, logout, danbooru.
func Builtin(cfg config.Config, searcher Searcher) []Command {
	return []Command{
		Login(cfg),
		Logout(cfg),
		Danbooru(cfg, searcher),
	}
}

// Login grants deletion rights when the secret matches.
//
// The dispatch layer lowercases text before argument parsing, so secrets
// are matched case-insensitively against a lowercase configured secret.
func Login(cfg config.Config) Command {
	return Command{
		Name:    "login",
		MinArgs: 1,
		MaxArgs: 1,
		Run: func(ctx context.Context, sess *session.Session, args []string) (Outcome, error) {
			if args[0] != cfg.Secret {
				return Respond(cfg.Messages.LoginFail, http.StatusUnauthorized), nil
			}
			sess.SetPrivileged(true)
			sess.Flash(cfg.Messages.Greet)
			return Redirect(), nil
		},
	}
}

// Logout revokes deletion rights unconditionally.
func Logout(cfg config.Config) Command {
	return Command{
		Name:    "logout",
		MinArgs: 0,
		MaxArgs: 0,
		Run: func(ctx context.Context, sess *session.Session, args []string) (Outcome, error) {
			sess.SetPrivileged(false)
			sess.Flash(cfg.Messages.Goodbye)
			return Redirect(), nil
		},
	}
}

// Danbooru turns a tag search into a memory holding one random result.
// Empty results answer 400. Transport and parse failures propagate to the
// caller unless lenient mode downgrades them to a 400; the propagating
// default is a known sharp edge kept on purpose so broken command
// implementations stay visible.
func Danbooru(cfg config.Config, searcher Searcher) Command {
	return Command{
		Name:    "danbooru",
		MinArgs: 0,
		MaxArgs: -1,
		Run: func(ctx context.Context, sess *session.Session, args []string) (Outcome, error) {
			fileURL, err := searcher.RandomImage(ctx, args)
			if err != nil {
				if errors.Is(err, danbooru.ErrNoResults) {
					return Respond(cfg.Messages.NoMatches, http.StatusBadRequest), nil
				}
				if cfg.Danbooru.Lenient {
					return Respond(cfg.Messages.Unavailable, http.StatusBadRequest), nil
				}
				return Outcome{}, err
			}
			return CreateMemory(fileURL), nil
		},
	}
}
