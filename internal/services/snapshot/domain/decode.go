package domain

import (
	"repotraffic/internal/core/timestamp"
	perr "repotraffic/internal/platform/errors"
	"repotraffic/internal/platform/validate"

	json "github.com/goccy/go-json"
)

// The wire structs mirror the payload types with pointer fields so a key that
// is absent can be told apart from a zero value. Slices are checked by hand
// because an empty list is a valid series.

type recordWire struct {
	Timestamp *timestamp.Timestamp `json:"timestamp" validate:"required"`
	Count     *uint32              `json:"count" validate:"required"`
	Uniques   *uint32              `json:"uniques" validate:"required"`
}

type seriesWire struct {
	Count   *uint32 `json:"count" validate:"required"`
	Uniques *uint32 `json:"uniques" validate:"required"`
}

type trafficWire struct {
	seriesWire
	Views *[]Record `json:"views"`
}

type clonesWire struct {
	seriesWire
	Clones *[]Record `json:"clones"`
}

type repoWire struct {
	FullName         *string   `json:"full_name" validate:"required"`
	ForksCount       *uint32   `json:"forks_count" validate:"required"`
	StargazersCount  *uint32   `json:"stargazers_count" validate:"required"`
	WatchersCount    *uint32   `json:"watchers_count" validate:"required"`
	OpenIssuesCount  *uint32   `json:"open_issues_count" validate:"required"`
	SubscribersCount *uint32   `json:"subscribers_count" validate:"required"`
	HasWiki          *bool     `json:"has_wiki" validate:"required"`
	Archived         *bool     `json:"archived" validate:"required"`
	HasProjects      *bool     `json:"has_projects" validate:"required"`
	Size             *uint32   `json:"size" validate:"required"`
	Topics           *[]string `json:"topics"`
	License          *License  `json:"license"`
}

// decodeStrict unmarshals b into the wire struct w and checks required keys
func decodeStrict(b []byte, w any) error {
	if err := json.Unmarshal(b, w); err != nil {
		return perr.Wrap(err, perr.ErrorCodeDecode, "invalid JSON")
	}
	return validate.Struct(w)
}

// records dereferences a series list, rejecting a missing or null key
func records(p *[]Record, key string) ([]Record, error) {
	if p == nil {
		return nil, perr.WithField(perr.Decodef("invalid payload: %s is a required field", key), key)
	}
	if *p == nil {
		return []Record{}, nil
	}
	return *p, nil
}

// UnmarshalJSON requires timestamp, count and uniques
func (r *Record) UnmarshalJSON(b []byte) error {
	var w recordWire
	if err := decodeStrict(b, &w); err != nil {
		return err
	}
	*r = Record{Timestamp: *w.Timestamp, Count: *w.Count, Uniques: *w.Uniques}
	return nil
}

// UnmarshalJSON requires count, uniques and views
func (t *Traffic) UnmarshalJSON(b []byte) error {
	var w trafficWire
	if err := decodeStrict(b, &w); err != nil {
		return err
	}
	views, err := records(w.Views, "views")
	if err != nil {
		return err
	}
	*t = Traffic{Count: *w.Count, Uniques: *w.Uniques, Views: views}
	return nil
}

// UnmarshalJSON requires count, uniques and clones
func (c *Clones) UnmarshalJSON(b []byte) error {
	var w clonesWire
	if err := decodeStrict(b, &w); err != nil {
		return err
	}
	clones, err := records(w.Clones, "clones")
	if err != nil {
		return err
	}
	*c = Clones{Count: *w.Count, Uniques: *w.Uniques, Clones: clones}
	return nil
}

// UnmarshalJSON requires every field except license
func (m *RepoMetadata) UnmarshalJSON(b []byte) error {
	var w repoWire
	if err := decodeStrict(b, &w); err != nil {
		return err
	}
	if w.Topics == nil {
		return perr.WithField(perr.Decodef("invalid payload: topics is a required field"), "topics")
	}
	topics := *w.Topics
	if topics == nil {
		topics = []string{}
	}
	*m = RepoMetadata{
		FullName:         *w.FullName,
		ForksCount:       *w.ForksCount,
		StargazersCount:  *w.StargazersCount,
		WatchersCount:    *w.WatchersCount,
		OpenIssuesCount:  *w.OpenIssuesCount,
		SubscribersCount: *w.SubscribersCount,
		HasWiki:          *w.HasWiki,
		Archived:         *w.Archived,
		HasProjects:      *w.HasProjects,
		Size:             *w.Size,
		Topics:           topics,
		License:          w.License,
	}
	return nil
}
