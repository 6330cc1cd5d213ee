// Package domain defines the types and interfaces for the snapshot service
package domain

import (
	"strings"

	"repotraffic/internal/core/timestamp"
	perr "repotraffic/internal/platform/errors"
)

// Frequency is the aggregation period of a traffic or clones series
type Frequency uint8

const (
	// Day buckets per calendar day
	Day Frequency = iota
	// Week buckets per week, keyed by the week's starting date
	Week
)

// Frequencies in the order they are persisted
var Frequencies = [...]Frequency{Week, Day}

// String returns the lowercase name used in API queries and directory names
func (f Frequency) String() string {
	if f == Week {
		return "week"
	}
	return "day"
}

// Record is one data point of a series. Every field must be present in the
// source document; see decode.go
type Record struct {
	Timestamp timestamp.Timestamp `json:"timestamp" validate:"required"`
	Count     uint32              `json:"count"`
	Uniques   uint32              `json:"uniques"`
}

// Traffic is the views payload for one frequency
type Traffic struct {
	Count   uint32   `json:"count"`
	Uniques uint32   `json:"uniques"`
	Views   []Record `json:"views" validate:"required,dive"`
}

// Clones is the clones payload for one frequency
type Clones struct {
	Count   uint32   `json:"count"`
	Uniques uint32   `json:"uniques"`
	Clones  []Record `json:"clones" validate:"required,dive"`
}

// Stats is any container holding an ordered series at a single frequency
type Stats interface {
	Records() []Record
	Frequency() Frequency
}

// Totals is implemented by containers that also carry series wide aggregates
type Totals interface {
	Totals() (count, uniques uint32)
}

// TrafficContainer tags a views payload with its repository and frequency
type TrafficContainer struct {
	Repo    RepoID
	Per     Frequency
	Payload Traffic
}

// Records returns the views series
func (c *TrafficContainer) Records() []Record { return c.Payload.Views }

// Frequency returns the series frequency
func (c *TrafficContainer) Frequency() Frequency { return c.Per }

// Totals returns the payload aggregates
func (c *TrafficContainer) Totals() (uint32, uint32) { return c.Payload.Count, c.Payload.Uniques }

// ClonesContainer tags a clones payload with its repository and frequency
type ClonesContainer struct {
	Repo    RepoID
	Per     Frequency
	Payload Clones
}

// Records returns the clones series
func (c *ClonesContainer) Records() []Record { return c.Payload.Clones }

// Frequency returns the series frequency
func (c *ClonesContainer) Frequency() Frequency { return c.Per }

// Totals returns the payload aggregates
func (c *ClonesContainer) Totals() (uint32, uint32) { return c.Payload.Count, c.Payload.Uniques }

// License is the repository license summary
type License struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// RepoMetadata is the repository snapshot persisted once per day
type RepoMetadata struct {
	FullName         string   `json:"full_name" validate:"required,slug"`
	ForksCount       uint32   `json:"forks_count"`
	StargazersCount  uint32   `json:"stargazers_count"`
	WatchersCount    uint32   `json:"watchers_count"`
	OpenIssuesCount  uint32   `json:"open_issues_count"`
	SubscribersCount uint32   `json:"subscribers_count"`
	HasWiki          bool     `json:"has_wiki"`
	Archived         bool     `json:"archived"`
	HasProjects      bool     `json:"has_projects"`
	Size             uint32   `json:"size"`
	Topics           []string `json:"topics"`
	License          *License `json:"license"`
}

// RepoContainer tags repository metadata with the id it was fetched for
type RepoContainer struct {
	Repo    RepoID
	Payload RepoMetadata
}

// RepoID names a repository as owner/name
type RepoID struct {
	Owner string
	Name  string
}

// ParseRepoID splits s on the first '/'; both halves must be present
func ParseRepoID(s string) (RepoID, error) {
	owner, name, ok := strings.Cut(s, "/")
	if !ok {
		return RepoID{}, perr.InvalidArgf("failed to parse GitHub repository %q", s)
	}
	if owner == "" || name == "" {
		return RepoID{}, perr.InvalidArgf("failed to parse GitHub repository %q: owner and name are required", s)
	}
	return RepoID{Owner: owner, Name: name}, nil
}

// Slug renders owner/name
func (r RepoID) Slug() string { return r.Owner + "/" + r.Name }

func (r RepoID) String() string { return r.Slug() }

// Kind is the resource a command collects
type Kind uint8

const (
	// KindTraffic collects page views
	KindTraffic Kind = iota + 1
	// KindClones collects git clones
	KindClones
	// KindRepo collects the metadata snapshot
	KindRepo
	// KindAll runs traffic, clones and repo in turn
	KindAll
)

// String returns the command word, which doubles as the output directory name
func (k Kind) String() string {
	switch k {
	case KindTraffic:
		return "traffic"
	case KindClones:
		return "clones"
	case KindRepo:
		return "repo"
	case KindAll:
		return "all"
	}
	return "unknown"
}

// ParseKind reads a command word
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindTraffic, KindClones, KindRepo, KindAll} {
		if s == k.String() {
			return k, nil
		}
	}
	return 0, perr.InvalidArgf("command %s does not exist", s)
}

// Command is one resolved invocation
type Command struct {
	Kind Kind
	Repo RepoID
}

// ParseCommand resolves a command word and repository argument
func ParseCommand(word, repo string) (Command, error) {
	k, err := ParseKind(word)
	if err != nil {
		return Command{}, err
	}
	if repo == "" {
		return Command{}, perr.InvalidArgf("no repository provided")
	}
	id, err := ParseRepoID(repo)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: k, Repo: id}, nil
}
