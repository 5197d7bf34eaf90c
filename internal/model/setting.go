package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// SettingKeyInstagramURL stores the Instagram profile link shown on the form.
	SettingKeyInstagramURL = "instagram_url"
	// SettingKeyLinkedInURL stores the LinkedIn profile link shown on the form.
	SettingKeyLinkedInURL = "linkedin_url"
	// SettingKeyWhatsappURL stores the WhatsApp contact link shown on the form.
	SettingKeyWhatsappURL = "whatsapp_url"

	urlSchemeHTTP  = "http"
	urlSchemeHTTPS = "https"
)

var (
	ErrInvalidSocialLink = errors.New("invalid_social_link")
)

// Setting persists one configuration value that should survive restarts.
type Setting struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"not null;size:500"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// SocialLinks is the closed set of outbound links configurable by the admin.
// An empty field means the corresponding link is not shown.
type SocialLinks struct {
	InstagramURL string
	LinkedInURL  string
	WhatsappURL  string
}

// Validate checks that every non-empty link parses as an absolute http(s) URL.
func (links SocialLinks) Validate() error {
	for settingKey, linkValue := range links.byKey() {
		if validationErr := validateSocialLinkURL(linkValue); validationErr != nil {
			return fmt.Errorf("%w: %s", validationErr, settingKey)
		}
	}
	return nil
}

// Settings expands the record into one row per configuration key.
func (links SocialLinks) Settings() []Setting {
	byKey := links.byKey()
	settings := make([]Setting, 0, len(byKey))
	for _, settingKey := range SocialLinkSettingKeys() {
		settings = append(settings, Setting{Key: settingKey, Value: byKey[settingKey]})
	}
	return settings
}

// SocialLinksFromSettings folds setting rows into the closed record, ignoring
// rows with unrecognized keys.
func SocialLinksFromSettings(settings []Setting) SocialLinks {
	var links SocialLinks
	for _, setting := range settings {
		value := strings.TrimSpace(setting.Value)
		switch setting.Key {
		case SettingKeyInstagramURL:
			links.InstagramURL = value
		case SettingKeyLinkedInURL:
			links.LinkedInURL = value
		case SettingKeyWhatsappURL:
			links.WhatsappURL = value
		}
	}
	return links
}

// SocialLinkSettingKeys lists the configuration keys in stable order.
func SocialLinkSettingKeys() []string {
	return []string{SettingKeyInstagramURL, SettingKeyLinkedInURL, SettingKeyWhatsappURL}
}

func (links SocialLinks) byKey() map[string]string {
	return map[string]string{
		SettingKeyInstagramURL: strings.TrimSpace(links.InstagramURL),
		SettingKeyLinkedInURL:  strings.TrimSpace(links.LinkedInURL),
		SettingKeyWhatsappURL:  strings.TrimSpace(links.WhatsappURL),
	}
}

func validateSocialLinkURL(linkValue string) error {
	if linkValue == "" {
		return nil
	}
	parsedURL, parseErr := url.Parse(linkValue)
	if parseErr != nil {
		return ErrInvalidSocialLink
	}
	if parsedURL.Scheme != urlSchemeHTTP && parsedURL.Scheme != urlSchemeHTTPS {
		return ErrInvalidSocialLink
	}
	if parsedURL.Host == "" {
		return ErrInvalidSocialLink
	}
	return nil
}
