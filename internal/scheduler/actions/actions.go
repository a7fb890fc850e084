package actions

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"pressroom/pkg/content"
	"pressroom/pkg/hooks"
	"pressroom/pkg/logger"
	"pressroom/pkg/model"
)

const maxSEOTitleLength = 70

// Runner materializes a due item in the content store and executes its
// publish actions in declared order. The first failing action aborts the
// rest; already-completed actions are not rolled back.
type Runner interface {
	Publish(ctx context.Context, item *model.ScheduledItem) error
}

type runner struct {
	store   *content.Store
	deploy  *hooks.DeployClient
	webhook *hooks.WebhookSender
	cache   *hooks.CachePurger
	log     *logger.Logger
}

func NewRunner(store *content.Store, deploy *hooks.DeployClient, webhook *hooks.WebhookSender, cache *hooks.CachePurger, log *logger.Logger) Runner {
	return &runner{
		store:   store,
		deploy:  deploy,
		webhook: webhook,
		cache:   cache,
		log:     log,
	}
}

func (r *runner) Publish(ctx context.Context, item *model.ScheduledItem) error {
	recordID := content.RecordID(item.Title, item.ScheduledAt)

	fields := make(map[string]any, len(item.Payload.Fields)+3)
	for k, v := range item.Payload.Fields {
		fields[k] = v
	}
	fields["title"] = item.Title
	fields["author"] = item.Author
	fields["date"] = item.ScheduledAt.Format("2006-01-02")

	if _, err := r.store.Write(item.Type, recordID, fields, item.Payload.Body); err != nil {
		return fmt.Errorf("failed to write content record: %w", err)
	}

	for _, action := range item.PublishActions {
		if err := r.run(ctx, action, item, recordID); err != nil {
			return fmt.Errorf("action %s: %w", action, err)
		}
		r.log.Debug("Publish action completed",
			"item_id", item.ID,
			"action", action,
		)
	}
	return nil
}

func (r *runner) run(ctx context.Context, action string, item *model.ScheduledItem, recordID string) error {
	switch action {
	case model.ActionDeploy:
		if !r.deploy.Configured() {
			r.log.Warn("Deploy hook not configured, skipping", "item_id", item.ID)
			return nil
		}
		buildID, err := r.deploy.Trigger(ctx, fmt.Sprintf("Scheduled publish: %s", item.Title))
		if err != nil {
			return err
		}
		r.log.Info("Deploy triggered", "item_id", item.ID, "build_id", buildID)
		return nil

	case model.ActionSEOCheck:
		return r.seoCheck(item)

	case model.ActionSocialMedia:
		if !r.webhook.Configured() {
			r.log.Warn("Social webhook not configured, skipping", "item_id", item.ID)
			return nil
		}
		return r.webhook.Send(ctx, map[string]any{
			"title": item.Title,
			"type":  item.Type,
			"url":   r.store.RecordURL(item.Type, recordID),
		})

	case model.ActionGenerateSitemap:
		return r.store.GenerateSitemap()

	case model.ActionClearCache:
		if !r.cache.Configured() {
			r.log.Warn("Cache purge not configured, skipping", "item_id", item.ID)
			return nil
		}
		return r.cache.Purge(ctx)

	default:
		return fmt.Errorf("unknown publish action")
	}
}

// seoCheck enforces the basics a search snippet needs. Length limits
// follow what result pages truncate at.
func (r *runner) seoCheck(item *model.ScheduledItem) error {
	title := strings.TrimSpace(item.Title)
	if title == "" {
		return fmt.Errorf("title is empty")
	}
	if utf8.RuneCountInString(title) > maxSEOTitleLength {
		return fmt.Errorf("title exceeds %d characters", maxSEOTitleLength)
	}

	description, _ := item.Payload.Fields["description"].(string)
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("description is missing")
	}
	return nil
}
