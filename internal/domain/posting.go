package domain

import "time"

type Salary struct {
	Min      *float64 `json:"min,omitempty"`
	Max      *float64 `json:"max,omitempty"`
	Currency string   `json:"currency,omitempty"`
	Interval string   `json:"interval,omitempty"` // yearly/monthly/hourly/...
}

type JobPosting struct {
	ID                string            `json:"id"`
	Title             string            `json:"title"`
	Company           string            `json:"company"`
	Location          string            `json:"location"`
	City              string            `json:"-"`
	URL               string            `json:"job_url"`
	Source            SourceID          `json:"site"`
	Sources           []SourceID        `json:"sites"`
	DatePosted        *time.Time        `json:"date_posted,omitempty"`
	Description       string            `json:"description,omitempty"`
	DescriptionFormat DescriptionFormat `json:"description_format,omitempty"`
	Salary            *Salary           `json:"salary,omitempty"`
	JobType           JobType           `json:"job_type,omitempty"`
	IsRemote          bool              `json:"is_remote"`
	Score             int               `json:"score,omitempty"`
	Tags              []string          `json:"tags,omitempty"`
}
