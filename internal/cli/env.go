// env.go carries the shared wiring helpers used by the command files.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/nexus-ai/nexus/internal/chat"
	"github.com/nexus-ai/nexus/internal/log"
	"github.com/nexus-ai/nexus/internal/session"
)

// historyDBPath returns the local archive database location.
func historyDBPath(dir string) string {
	return filepath.Join(dir, ".nexus", "history.db")
}

// session restores the persisted session and primes the client credential.
func (e *cliEnv) session() (*session.Session, error) {
	sess, err := session.Load(e.state)
	if err != nil {
		return nil, err
	}
	if sess.SignedIn() {
		e.client.SetToken(sess.AuthToken)
	}
	return sess, nil
}

// requireSession is session plus a signed-in check for account commands.
func (e *cliEnv) requireSession() (*session.Session, error) {
	sess, err := e.session()
	if err != nil {
		return nil, err
	}
	if !sess.SignedIn() {
		return nil, fmt.Errorf("not signed in; run: nexus login")
	}
	return sess, nil
}

// manager builds the chat session manager. Messages are mirrored into the
// local archive when it is available.
func (e *cliEnv) manager() (*chat.Manager, error) {
	sess, err := e.session()
	if err != nil {
		return nil, err
	}

	businessID := 0
	if sess.SignedIn() {
		businessID = sess.User.BusinessID

		// The tenant config is authoritative for the widget's business id;
		// the stored user record serves when the fetch fails.
		if !e.cfg.DemoMode {
			ctx, cancel := e.cmdCtx()
			if bc, err := e.client.BusinessConfig(ctx); err == nil && bc.BusinessID != 0 {
				businessID = bc.BusinessID
			}
			cancel()
		}
	}

	opts := chat.Options{
		MemoryKey:  e.cfg.MemoryKey(),
		DemoMode:   e.cfg.DemoMode,
		BusinessID: businessID,
		Events:     e.events,
	}

	if e.archive != nil {
		conv, err := e.archive.StartConversation(e.cfg.Tenant.ID, e.cfg.DemoMode)
		if err != nil {
			log.Diag.Warn().Err(err).Msg("failed to start archived conversation")
		} else {
			archive := e.archive
			opts.OnMessage = func(msg chat.Message) {
				if err := archive.AddMessage(conv.ID, msg.Sender, msg.Text); err != nil {
					log.Diag.Warn().Err(err).Msg("failed to archive message")
				}
			}
		}
	}

	return chat.NewManager(e.client, e.state, opts), nil
}

// cmdCtx returns a request context bounded by the configured timeout.
func (e *cliEnv) cmdCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), e.cfg.Timeout())
}
