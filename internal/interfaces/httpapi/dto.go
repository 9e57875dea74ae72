package httpapi

import (
	"time"

	"github.com/riskibarqy/awap-platform/internal/domain/dispatch"
	"github.com/riskibarqy/awap-platform/internal/domain/permission"
	"github.com/riskibarqy/awap-platform/internal/domain/team"
	"github.com/riskibarqy/awap-platform/internal/domain/user"
	"github.com/riskibarqy/awap-platform/internal/usecase"
)

type registerRequest struct {
	Username string `json:"username" validate:"required,max=32"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createTeamRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

type addMemberRequest struct {
	Username string `json:"username" validate:"required"`
}

type changeBracketRequest struct {
	Bracket string `json:"bracket" validate:"required"`
}

type uploadURLRequest struct {
	FileName    string `json:"file_name" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"omitempty,max=128"`
}

type recordSubmissionRequest struct {
	ObjectKey string `json:"object_key" validate:"required"`
	FileName  string `json:"file_name" validate:"omitempty,max=255"`
}

type activateSubmissionRequest struct {
	Team      string `json:"team" validate:"omitempty,max=64"`
	ObjectKey string `json:"object_key" validate:"required"`
}

// matchRequest keeps the field names the dashboard already posts.
type matchRequest struct {
	Player string `json:"player" validate:"omitempty,max=64"`
	Opp    string `json:"opp" validate:"required,max=64"`
}

type startTournamentRequest struct {
	Bracket string `json:"bracket" validate:"required"`
}

type userDTO struct {
	Username  string    `json:"username"`
	Email     string    `json:"email,omitempty"`
	Role      user.Role `json:"role"`
	Team      string    `json:"team,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionDTO struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        userDTO   `json:"user"`
}

type meDTO struct {
	User userDTO  `json:"user"`
	Team *teamDTO `json:"team,omitempty"`
}

type teamDTO struct {
	Name          string       `json:"name"`
	Bracket       team.Bracket `json:"bracket"`
	Members       []string     `json:"members"`
	ActiveVersion string       `json:"active_version,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

type uploadTicketDTO struct {
	ObjectKey   string `json:"object_key"`
	UploadURL   string `json:"upload_url"`
	ContentType string `json:"content_type"`
}

type submissionDTO struct {
	ObjectKey    string    `json:"object_key"`
	Team         string    `json:"team"`
	UploadedName string    `json:"uploaded_name,omitempty"`
	DownloadURL  string    `json:"download_url,omitempty"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type dispatchResultDTO struct {
	DispatchID   string        `json:"dispatch_id"`
	Kind         dispatch.Kind `json:"kind"`
	Participants []string      `json:"participants,omitempty"`
	Upstream     any           `json:"upstream,omitempty"`
}

type teamMatchDTO struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Opponent  string    `json:"opponent"`
	Status    string    `json:"status"`
	Result    string    `json:"result"`
	ReplayURL string    `json:"replay_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type adminMatchDTO struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Team1     string    `json:"team1"`
	Team2     string    `json:"team2"`
	Status    string    `json:"status"`
	Outcome   string    `json:"outcome,omitempty"`
	ReplayURL string    `json:"replay_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type leaderboardRowDTO struct {
	Ranking   int       `json:"ranking"`
	TeamName  string    `json:"team_name"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updated_at"`
}

type pageMetaDTO struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	From        int `json:"from"`
	To          int `json:"to"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
}

type leaderboardDTO struct {
	Items []leaderboardRowDTO `json:"items"`
	Meta  pageMetaDTO         `json:"meta"`
}

type dispatchEventDTO struct {
	DispatchID   string          `json:"dispatch_id"`
	Kind         dispatch.Kind   `json:"kind"`
	Path         string          `json:"path"`
	RequestedBy  string          `json:"requested_by,omitempty"`
	Participants int             `json:"participants"`
	Status       dispatch.Status `json:"status"`
	ResponseCode int             `json:"response_code,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	OccurredAt   time.Time       `json:"occurred_at"`
	TraceID      string          `json:"trace_id,omitempty"`
}

func userToDTO(v user.User) userDTO {
	return userDTO{
		Username:  v.Username,
		Email:     v.Email,
		Role:      v.Role,
		Team:      v.Team,
		CreatedAt: v.CreatedAt,
	}
}

func teamToDTO(v team.Team) teamDTO {
	members := v.Members
	if members == nil {
		members = []string{}
	}
	return teamDTO{
		Name:          v.Name,
		Bracket:       v.Bracket,
		Members:       members,
		ActiveVersion: v.ActiveVersion,
		CreatedAt:     v.CreatedAt,
		UpdatedAt:     v.UpdatedAt,
	}
}

func submissionsToDTO(items []usecase.SubmissionView) []submissionDTO {
	out := make([]submissionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, submissionDTO{
			ObjectKey:    item.Submission.ObjectKey,
			Team:         item.Submission.Team,
			UploadedName: item.Submission.UploadedName,
			DownloadURL:  item.DownloadURL,
			Active:       item.Active,
			CreatedAt:    item.Submission.CreatedAt,
		})
	}
	return out
}

func dispatchResultToDTO(v usecase.DispatchResult) dispatchResultDTO {
	return dispatchResultDTO{
		DispatchID:   v.DispatchID,
		Kind:         v.Kind,
		Participants: v.Participants,
		Upstream:     v.Upstream,
	}
}

func permissionsToDTO(v permission.Flags) map[string]bool {
	out := make(map[string]bool, len(permission.AllFlags()))
	for flag, enabled := range v.AsMap() {
		out[string(flag)] = enabled
	}
	return out
}
