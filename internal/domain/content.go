package domain

import (
	"context"
)

type CMSSection string

const (
	SectionAbout   CMSSection = "about"
	SectionFAQ     CMSSection = "faq"
	SectionPrivacy CMSSection = "privacy"
	SectionTerms   CMSSection = "terms"
)

var CMSSections = []CMSSection{SectionAbout, SectionFAQ, SectionPrivacy, SectionTerms}

// DefaultCMSContent is served until an admin saves a section.
var DefaultCMSContent = map[CMSSection]string{
	SectionAbout:   "About us content not set yet.",
	SectionFAQ:     "FAQ content not set yet.",
	SectionPrivacy: "Privacy policy content not set yet.",
	SectionTerms:   "Terms and conditions not set yet.",
}

func (s CMSSection) Valid() bool {
	_, ok := DefaultCMSContent[s]
	return ok
}

type CMSContent struct {
	Section CMSSection `json:"section"`
	Content string     `json:"content"`
}

type CMSUpdateRequest struct {
	Content string `json:"content" binding:"required,max=50000"`
}

type SiteSettings struct {
	SiteName              string `json:"site_name" binding:"required,max=80"`
	MaintenanceMode       bool   `json:"maintenance_mode"`
	AllowNewRegistrations bool   `json:"allow_new_registrations"`
	ContactEmail          string `json:"contact_email" binding:"omitempty,email"`
	ContactPhone          string `json:"contact_phone" binding:"omitempty,max=20"`
	SEOTitle              string `json:"seo_title" binding:"omitempty,max=120"`
	SEODescription        string `json:"seo_description" binding:"omitempty,max=300"`
}

func DefaultSiteSettings() SiteSettings {
	return SiteSettings{
		SiteName:              "Flowrk.in",
		MaintenanceMode:       false,
		AllowNewRegistrations: true,
		ContactEmail:          "flowrk66@gmail.com",
		ContactPhone:          "+917209394252",
		SEOTitle:              "Flowrk - India's Trusted Hyperlocal Work Platform",
		SEODescription:        "Find and offer local work in your area instantly.",
	}
}

type Notification struct {
	ID        string `json:"id,omitempty"`
	Audience  string `json:"audience"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	CreatedBy string `json:"created_by,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type NotificationRequest struct {
	Audience string `json:"audience" binding:"required,oneof=all workers employers system"`
	Title    string `json:"title" binding:"required,max=120"`
	Message  string `json:"message" binding:"required,max=1000"`
}

// NotificationRecorded is the only status a notification reaches: nothing is delivered.
const NotificationRecorded = "recorded"

type ContactMessage struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject,omitempty"`
	Message   string `json:"message"`
	Forwarded bool   `json:"forwarded,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100,valid_name"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"omitempty,max=150"`
	Message string `json:"message" binding:"required,max=2000"`
}

// ContactForwarder delivers a contact message to the support inbox.
type ContactForwarder interface {
	IsConfigured() bool
	SendContactEmail(msg ContactMessage) error
}

type ContentUsecase interface {
	Section(ctx context.Context, section CMSSection) (*CMSContent, error)
	Sections(ctx context.Context) ([]CMSContent, error)
	SaveSection(ctx context.Context, section CMSSection, content string) error
	Settings(ctx context.Context) (*SiteSettings, error)
	SaveSettings(ctx context.Context, settings SiteSettings) error
	ComposeNotification(ctx context.Context, req NotificationRequest) (*Notification, error)
	Notifications(ctx context.Context) ([]Notification, error)
	SubmitContact(ctx context.Context, req ContactRequest) (*ContactMessage, error)
}

type HealthUsecase interface {
	Check(ctx context.Context) map[string]string
}
