package domain

import (
	"fmt"
	"time"
)

// Proxy is an outbound HTTP proxy referenced by zero or more credentials.
type Proxy struct {
	Base
	Host     string `gorm:"type:text;not null" json:"host"`
	Port     int    `gorm:"not null" json:"port"`
	Username string `gorm:"type:text" json:"username,omitempty"`
	Password string `gorm:"type:text" json:"-"`
}

// TableName returns the database table name for Proxy.
func (Proxy) TableName() string {
	return "proxies"
}

// URL renders the proxy as an http:// URL, embedding credentials when both
// username and password are set.
func (p *Proxy) URL() string {
	if p.Username != "" && p.Password != "" {
		return fmt.Sprintf("http://%s:%s@%s:%d", p.Username, p.Password, p.Host, p.Port)
	}
	return fmt.Sprintf("http://%s:%d", p.Host, p.Port)
}

// Credential is a scraping account used to authenticate against the external
// job-listing service. The rotator stamps LastUsed on every acquisition and
// the client adapter writes refreshed session cookies back after each use.
type Credential struct {
	Base
	Username string    `gorm:"type:text;uniqueIndex;not null" json:"username"`
	Password string    `gorm:"type:text;not null" json:"-"`
	Cookies  JSONMap   `gorm:"type:text" json:"-"`
	LastUsed time.Time `gorm:"index" json:"last_used"`
	ProxyID  *uint     `json:"proxy_id,omitempty"`
	Proxy    *Proxy    `gorm:"foreignKey:ProxyID" json:"proxy,omitempty"`
}

// TableName returns the database table name for Credential.
func (Credential) TableName() string {
	return "credentials"
}

// CookieMap returns the persisted session cookies as a plain name to value map.
func (c *Credential) CookieMap() map[string]string {
	cookies := make(map[string]string, len(c.Cookies))
	for name, v := range c.Cookies {
		if s, ok := v.(string); ok {
			cookies[name] = s
		}
	}
	return cookies
}

// SetCookieMap replaces the persisted session cookies.
func (c *Credential) SetCookieMap(cookies map[string]string) {
	m := make(JSONMap, len(cookies))
	for name, value := range cookies {
		m[name] = value
	}
	c.Cookies = m
}
