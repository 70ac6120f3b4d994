package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/storefront/internal/cart"
	"github.com/javajoker/storefront/internal/cartapi"
	"github.com/javajoker/storefront/internal/config"
	"github.com/javajoker/storefront/internal/guest"
	"github.com/javajoker/storefront/internal/i18n"
	"github.com/javajoker/storefront/internal/notify"
	"github.com/javajoker/storefront/internal/session"
)

// app holds everything one CLI invocation needs.
type app struct {
	cfg      *config.Config
	store    *guest.SQLiteStore
	sessions *guest.Slot
	client   *cartapi.Client
	auth     *session.State
	manager  *cart.Manager
	lang     string
	out      io.Writer
}

// savedSession is what the session slot holds between invocations.
type savedSession struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Email  string `json:"email,omitempty"`
}

func newApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if apiURL != "" {
		cfg.Client.BaseURL = apiURL
	}
	if storePath != "" {
		cfg.Guest.StorePath = storePath
	}

	if err := i18n.Initialize(cfg.I18n.DefaultLocale); err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}
	language := lang
	if language == "" {
		language = cfg.I18n.DefaultLocale
	}

	store, err := guest.Open(cfg.Guest.StorePath)
	if err != nil {
		return nil, err
	}

	client, err := cartapi.New(cfg.Client, cfg.Session.CookieName)
	if err != nil {
		store.Close()
		return nil, err
	}
	client.SetLanguage(language)

	var notifier notify.Notifier = notify.NewConsole(out)
	if verbose {
		notifier = notify.Multi{notifier, notify.NewLogNotifier(logrus.StandardLogger())}
	}

	a := &app{
		cfg:      cfg,
		store:    store,
		sessions: store.Slot(guest.SessionSlot),
		client:   client,
		auth:     session.NewState(),
		lang:     language,
		out:      out,
	}

	a.manager = cart.NewManager(client, store.Slot(guest.CartSlot), a.auth, notifier)
	a.manager.SetLanguage(language)
	a.manager.SetNotificationDuration(cfg.Notify.Duration)

	a.restoreSession(ctx)
	a.auth.OnChange(a.manager.HandleAuthChange)

	return a, nil
}

func (a *app) restoreSession(ctx context.Context) {
	data, err := a.sessions.Load(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Failed to read saved session")
		return
	}
	if len(data) == 0 {
		return
	}

	var saved savedSession
	if err := json.Unmarshal(data, &saved); err != nil || saved.Token == "" {
		logrus.Warn("Saved session is unreadable, continuing as guest")
		return
	}

	a.client.RestoreSession(saved.Token)
	a.auth.Restore(saved.UserID, true)
}

func (a *app) saveSession(ctx context.Context, account *cartapi.Account) error {
	data, err := json.Marshal(savedSession{
		Token:  a.client.SessionToken(),
		UserID: account.ID,
		Email:  account.Email,
	})
	if err != nil {
		return err
	}
	return a.sessions.Save(ctx, data)
}

func (a *app) Close() error {
	return a.store.Close()
}
