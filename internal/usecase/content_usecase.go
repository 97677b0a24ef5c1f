package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"flowrk-backend/internal/domain"
	"flowrk-backend/pkg/apperror"
	"flowrk-backend/pkg/logger"
)

const notificationsLimit = 100

type contentUsecase struct {
	store         domain.PathStore
	notifications domain.NotificationRepository
	contacts      domain.ContactMessageRepository
	audit         domain.AuditLogger
	forwarder     domain.ContactForwarder
	isAdmin       AdminCheck
	validate      *validator.Validate
}

func NewContentUsecase(
	store domain.PathStore,
	notifications domain.NotificationRepository,
	contacts domain.ContactMessageRepository,
	audit domain.AuditLogger,
	forwarder domain.ContactForwarder,
	isAdmin AdminCheck,
	validate *validator.Validate,
) domain.ContentUsecase {
	return &contentUsecase{
		store:         store,
		notifications: notifications,
		contacts:      contacts,
		audit:         audit,
		forwarder:     forwarder,
		isAdmin:       isAdmin,
		validate:      validate,
	}
}

// Section returns the stored text for section, or its default until an admin saves one.
func (u *contentUsecase) Section(ctx context.Context, section domain.CMSSection) (*domain.CMSContent, error) {
	if !section.Valid() {
		return nil, apperror.NotFound("Unknown content section")
	}
	value, err := u.store.Read(ctx, domain.PathCMS+"/"+string(section))
	if err != nil {
		return nil, apperror.FromStore(err, "Content")
	}
	text, ok := value.(string)
	if !ok || text == "" {
		text = domain.DefaultCMSContent[section]
	}
	return &domain.CMSContent{Section: section, Content: text}, nil
}

func (u *contentUsecase) Sections(ctx context.Context) ([]domain.CMSContent, error) {
	out := make([]domain.CMSContent, 0, len(domain.CMSSections))
	for _, section := range domain.CMSSections {
		content, err := u.Section(ctx, section)
		if err != nil {
			return nil, err
		}
		out = append(out, *content)
	}
	return out, nil
}

func (u *contentUsecase) SaveSection(ctx context.Context, section domain.CMSSection, content string) error {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return err
	}
	if !section.Valid() {
		return apperror.NotFound("Unknown content section")
	}
	if err := validateRequest(u.validate, domain.CMSUpdateRequest{Content: content}); err != nil {
		return err
	}
	if err := u.store.Write(ctx, domain.PathCMS+"/"+string(section), content); err != nil {
		return apperror.FromStore(err, "Content")
	}
	u.audit.Record(ctx, domain.AuditLog{
		Action:     "Updated CMS section",
		TargetType: "cms",
		TargetID:   string(section),
		Severity:   domain.SeverityLow,
	})
	return nil
}

// Settings reads the settings node merged over DefaultSiteSettings, so fields never saved
// keep their defaults.
func (u *contentUsecase) Settings(ctx context.Context) (*domain.SiteSettings, error) {
	settings := domain.DefaultSiteSettings()
	value, err := u.store.Read(ctx, domain.PathSettings)
	if err != nil {
		return nil, apperror.FromStore(err, "Settings")
	}
	stored, ok := value.(map[string]any)
	if !ok {
		return &settings, nil
	}

	raw, err := json.Marshal(stored)
	if err == nil {
		err = json.Unmarshal(raw, &settings)
	}
	if err != nil {
		logger.Log.Warn("stored site settings unreadable, serving defaults", "error", err)
		defaults := domain.DefaultSiteSettings()
		return &defaults, nil
	}
	return &settings, nil
}

func (u *contentUsecase) SaveSettings(ctx context.Context, settings domain.SiteSettings) error {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return err
	}
	settings.SiteName = strings.TrimSpace(settings.SiteName)
	if err := validateRequest(u.validate, settings); err != nil {
		return err
	}
	previous, err := u.Settings(ctx)
	if err != nil {
		return err
	}
	if err := u.store.Write(ctx, domain.PathSettings, settings); err != nil {
		return apperror.FromStore(err, "Settings")
	}

	// Toggling maintenance mode in either direction is high; anything else is medium.
	severity := domain.SeverityMedium
	if previous.MaintenanceMode != settings.MaintenanceMode {
		severity = domain.SeverityHigh
	}
	u.audit.Record(ctx, domain.AuditLog{
		Action:     "Updated site settings",
		TargetType: "settings",
		TargetName: settings.SiteName,
		Severity:   severity,
	})
	return nil
}

// ComposeNotification records the notification. Nothing is delivered to devices.
func (u *contentUsecase) ComposeNotification(ctx context.Context, req domain.NotificationRequest) (*domain.Notification, error) {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return nil, err
	}
	if err := validateRequest(u.validate, req); err != nil {
		return nil, err
	}
	identity, _ := domain.IdentityFromContext(ctx)

	notification, err := u.notifications.Create(ctx, domain.Notification{
		Audience:  req.Audience,
		Title:     strings.TrimSpace(req.Title),
		Message:   strings.TrimSpace(req.Message),
		Status:    domain.NotificationRecorded,
		CreatedBy: identity.Email,
	})
	if err != nil {
		return nil, apperror.FromStore(err, "Notification")
	}
	u.audit.Record(ctx, domain.AuditLog{
		Action:     fmt.Sprintf("Composed notification for %s", req.Audience),
		TargetType: "notification",
		TargetID:   notification.ID,
		TargetName: notification.Title,
		Severity:   domain.SeverityLow,
	})
	return notification, nil
}

func (u *contentUsecase) Notifications(ctx context.Context) ([]domain.Notification, error) {
	if err := requireAdmin(ctx, u.isAdmin); err != nil {
		return nil, err
	}
	list, err := u.notifications.Filter(ctx, nil, "-created_at", notificationsLimit)
	if err != nil {
		return nil, apperror.FromStore(err, "Notification")
	}
	return list, nil
}

// SubmitContact stores the message and forwards it to the support inbox when mail is configured.
// A forwarding failure is logged; the stored message is still returned.
func (u *contentUsecase) SubmitContact(ctx context.Context, req domain.ContactRequest) (*domain.ContactMessage, error) {
	if err := validateRequest(u.validate, req); err != nil {
		return nil, err
	}

	msg, err := u.contacts.Create(ctx, domain.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	})
	if err != nil {
		return nil, apperror.FromStore(err, "Contact message")
	}

	if u.forwarder == nil || !u.forwarder.IsConfigured() {
		return msg, nil
	}
	if err := u.forwarder.SendContactEmail(*msg); err != nil {
		logger.Log.Error("contact message forward failed", "message_id", msg.ID, "error", err)
		return msg, nil
	}
	msg.Forwarded = true
	if err := u.contacts.Update(ctx, msg.ID, map[string]any{"forwarded": true}); err != nil {
		logger.Log.Warn("contact message forwarded flag not saved", "message_id", msg.ID, "error", err)
	}
	return msg, nil
}
