package api

import (
	"context"
	"sort"

	"github.com/hightouchio/portmanager/conncheck"
	"github.com/hightouchio/portmanager/profile"
	"github.com/hightouchio/portmanager/stats"
	"github.com/hightouchio/portmanager/store"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrProfileNotFound = errors.New("profile not found")

// CheckFunc checks a server. It is conncheck.Check outside of tests.
type CheckFunc func(ctx context.Context, host string, port int, user string) (conncheck.Result, error)

// API exposes the profile and active-connection stores over HTTP. It never
// launches the client.
type API struct {
	Profiles *store.ProfileStore
	Active   *store.ActiveStore
	Stats    stats.Stats
	Logger   logrus.FieldLogger
	Check    CheckFunc

	// Program replaces the client token in returned commands when set.
	Program string
}

type ProfileResponse struct {
	Name    string          `json:"name"`
	Command []string        `json:"command"`
	Profile profile.Profile `json:"profile"`
}

func (s API) ListProfiles() []ProfileResponse {
	profiles := s.Profiles.Load()
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	response := make([]ProfileResponse, 0, len(names))
	for _, name := range names {
		response = append(response, s.profileResponse(name, profiles[name]))
	}
	return response
}

func (s API) GetProfile(name string) (*ProfileResponse, error) {
	record, ok := s.Profiles.Get(name)
	if !ok {
		return nil, ErrProfileNotFound
	}
	response := s.profileResponse(name, record)
	return &response, nil
}

type UpsertProfileRequest struct {
	Name        string            `json:"-"`
	Destination string            `json:"destination,omitempty"`
	Host        string            `json:"host,omitempty"`
	User        string            `json:"user,omitempty"`
	Port        int               `json:"port,omitempty"`
	Key         string            `json:"key,omitempty"`
	Forwards    []profile.Forward `json:"forwards,omitempty"`
}

type requestError struct {
	error
}

// UpsertProfile accepts either a user@host destination or separate host and
// user fields. Nothing is written when the request is invalid.
func (s API) UpsertProfile(req UpsertProfileRequest) (*ProfileResponse, error) {
	host, user := req.Host, req.User
	if req.Destination != "" {
		var err error
		if user, host, err = profile.ParseDestination(req.Destination); err != nil {
			return nil, requestError{err}
		}
	}
	if host == "" || user == "" {
		return nil, requestError{profile.ErrMalformedDestination}
	}
	if req.Port < 0 || req.Port > 65535 {
		return nil, requestError{profile.ErrInvalidPort}
	}
	for _, fwd := range req.Forwards {
		if err := fwd.Validate(); err != nil {
			return nil, requestError{err}
		}
	}

	record, err := s.Profiles.Upsert(req.Name, host, user, req.Port, req.Key, req.Forwards)
	if err != nil {
		s.Stats.WithEventTags(stats.Tags{"profile": req.Name}).ErrorEvent("profile save failed", err)
		return nil, errors.Wrap(err, "could not save profile")
	}
	s.Stats.Incr("profiles.saved", nil, 1)

	response := s.profileResponse(req.Name, record)
	return &response, nil
}

func (s API) DeleteProfile(name string) error {
	removed, err := s.Profiles.Remove(name)
	if err != nil {
		return errors.Wrap(err, "could not delete profile")
	} else if !removed {
		return ErrProfileNotFound
	}
	s.Stats.Incr("profiles.deleted", nil, 1)
	return nil
}

func (s API) AddForward(name string, fwd profile.Forward) (*ProfileResponse, error) {
	if fwd.RemoteHost == "" {
		fwd.RemoteHost = profile.DefaultRemoteHost
	}

	added, err := s.Profiles.AppendForward(name, fwd)
	if err != nil {
		if errors.Is(err, profile.ErrInvalidPort) || errors.Is(err, profile.ErrUnknownDirection) {
			return nil, requestError{err}
		}
		return nil, err
	} else if !added {
		return nil, ErrProfileNotFound
	}
	s.Stats.Incr("forwards.added", stats.Tags{"type": fwd.Direction}, 1)

	return s.GetProfile(name)
}

type CheckProfileResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error,omitempty"`
	Result  *conncheck.Result `json:"result,omitempty"`
}

// CheckProfile reports whether the profile's server answers. An unreachable
// server is a successful request with Success false.
func (s API) CheckProfile(ctx context.Context, name string) (*CheckProfileResponse, error) {
	record, ok := s.Profiles.Get(name)
	if !ok {
		return nil, ErrProfileNotFound
	}

	result, err := s.Check(ctx, record.Host, record.Port, record.User)
	if err != nil {
		s.Stats.Incr("check", stats.Tags{"success": false}, 1)
		return &CheckProfileResponse{Success: false, Error: err.Error()}, nil
	}

	s.Stats.Incr("check", stats.Tags{"success": true}, 1)
	return &CheckProfileResponse{Success: true, Result: &result}, nil
}

type ActiveResponse struct {
	Name    string            `json:"name"`
	Started profile.Timestamp `json:"started"`
	Profile profile.Profile   `json:"profile"`
}

func (s API) ListActive() []ActiveResponse {
	list := s.Active.List()
	response := make([]ActiveResponse, len(list))
	for i, conn := range list {
		response[i] = ActiveResponse{Name: conn.Name, Started: conn.Started, Profile: conn.Profile}
	}
	return response
}

// Healthy fails when either store exists but cannot be parsed.
func (s API) Healthy(ctx context.Context) error {
	if _, result := s.Profiles.LoadState(); result == store.Corrupt {
		return errors.Errorf("profile store %s is corrupt", s.Profiles.Path())
	}
	if _, result := s.Active.LoadState(); result == store.Corrupt {
		return errors.Errorf("active connection store %s is corrupt", s.Active.Path())
	}
	return nil
}

func (s API) profileResponse(name string, record profile.Profile) ProfileResponse {
	command := profile.BuildCommand(record)
	if s.Program != "" {
		command[0] = s.Program
	}
	return ProfileResponse{Name: name, Command: command, Profile: record}
}
