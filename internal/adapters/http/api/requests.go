package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	service "github.com/okian/bidhub/internal/app"
	"github.com/okian/bidhub/internal/domain/model"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// SkillList accepts either a JSON array of strings or one comma separated string.
type SkillList []string

func (s *SkillList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*s = nil
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		*s = model.SplitSkills(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return fmt.Errorf("skills must be a list or a comma separated string: %w", err)
	}
	*s = model.NormalizeSkills(list)
	return nil
}

// Number accepts a JSON number or a numeric string.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("not a finite number: %q", raw)
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	if math.IsInf(f, 0) {
		return fmt.Errorf("not a finite number: %s", b)
	}
	*n = Number(f)
	return nil
}

// missingMessager lets a request replace the generic missing-fields text.
type missingMessager interface {
	missingMessage() string
}

// decode reads a JSON body into dst and validates it. The returned error
// text is safe to show clients.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}

	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for _, fe := range verrs {
		if strings.HasPrefix(fe.Tag(), "required") {
			msg := "Missing required fields"
			if m, ok := dst.(missingMessager); ok {
				msg = m.missingMessage()
			}
			return fmt.Errorf("%w: %s", ErrValidation, msg)
		}
	}
	return fmt.Errorf("%w: Invalid %s", ErrValidation, verrs[0].Field())
}

// validationMessage strips the sentinel prefix off a decode error.
func validationMessage(err error) string {
	switch {
	case errors.Is(err, ErrMalformedJSON):
		return "Malformed JSON body"
	case errors.Is(err, ErrValidation):
		_, msg, _ := strings.Cut(err.Error(), ": ")
		return msg
	default:
		return err.Error()
	}
}

type registerRequest struct {
	Name     string    `json:"name" validate:"required"`
	Email    string    `json:"email" validate:"required,email"`
	Password string    `json:"password" validate:"required"`
	Role     string    `json:"role" validate:"required,oneof=freelancer admin"`
	Skills   SkillList `json:"skills"`
	Bio      string    `json:"bio"`
}

func (r *registerRequest) toInput() service.Registration {
	return service.Registration{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     model.Role(r.Role),
		Skills:   r.Skills,
		Bio:      r.Bio,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (*loginRequest) missingMessage() string { return "Email and password are required" }

type profileRequest struct {
	Name   *string   `json:"name" validate:"omitempty,min=1"`
	Bio    *string   `json:"bio"`
	Skills SkillList `json:"skills"`
}

func (r *profileRequest) toUpdate() model.ProfileUpdate {
	return model.ProfileUpdate{Name: r.Name, Bio: r.Bio, Skills: r.Skills}
}

// jobRequest accepts clientId/clientName as aliases of adminId/adminName.
type jobRequest struct {
	Title           string    `json:"title" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	Category        string    `json:"category" validate:"required"`
	ExperienceLevel string    `json:"experienceLevel" validate:"omitempty,oneof=entry intermediate expert"`
	ProjectType     string    `json:"projectType" validate:"omitempty,oneof=fixed hourly"`
	Budget          string    `json:"budget"`
	Duration        string    `json:"duration"`
	Skills          SkillList `json:"skills"`
	Deadline        string    `json:"deadline"`
	AdminID         string    `json:"adminId" validate:"required_without=ClientID"`
	AdminName       string    `json:"adminName"`
	ClientID        string    `json:"clientId"`
	ClientName      string    `json:"clientName"`
}

var deadlineLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", time.DateOnly}

func parseDeadline(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: Invalid deadline", ErrValidation)
}

func (r *jobRequest) toInput() (service.JobInput, error) {
	deadline, err := parseDeadline(r.Deadline)
	if err != nil {
		return service.JobInput{}, err
	}
	in := service.JobInput{
		Title:           r.Title,
		Description:     r.Description,
		Category:        r.Category,
		ExperienceLevel: r.ExperienceLevel,
		ProjectType:     r.ProjectType,
		Budget:          r.Budget,
		Duration:        r.Duration,
		Skills:          r.Skills,
		Deadline:        deadline,
		AdminID:         r.AdminID,
		AdminName:       r.AdminName,
	}
	if in.AdminID == "" {
		in.AdminID = r.ClientID
	}
	if in.AdminName == "" {
		in.AdminName = r.ClientName
	}
	return in, nil
}

type applicationRequest struct {
	JobID          string `json:"jobId" validate:"required"`
	FreelancerID   string `json:"freelancerId" validate:"required"`
	FreelancerName string `json:"freelancerName"`
	Proposal       string `json:"proposal" validate:"required"`
	ProposedPrice  Number `json:"proposedPrice" validate:"required,gt=0"`
}

func (r *applicationRequest) toInput() service.ApplicationInput {
	return service.ApplicationInput{
		JobID:          r.JobID,
		FreelancerID:   r.FreelancerID,
		FreelancerName: r.FreelancerName,
		Proposal:       r.Proposal,
		ProposedPrice:  float64(r.ProposedPrice),
	}
}

type bidRequest struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	FreelancerID  string `json:"freelancerId" validate:"required"`
	AdminID       string `json:"adminId" validate:"required"`
	AdminName     string `json:"adminName"`
	Amount        Number `json:"amount" validate:"required,gt=0"`
}

func (r *bidRequest) toInput() service.BidInput {
	return service.BidInput{
		ApplicationID: r.ApplicationID,
		FreelancerID:  r.FreelancerID,
		AdminID:       r.AdminID,
		AdminName:     r.AdminName,
		Amount:        float64(r.Amount),
	}
}
