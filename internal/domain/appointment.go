package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Appointment is one scheduled meeting on a single day.
type Appointment struct {
	ID           string    `json:"id"`
	Title        string    `json:"titulo"`
	Participants string    `json:"participantes"`
	Subject      string    `json:"assunto_principal"`
	Keyword      string    `json:"palavra_chave"`
	Location     string    `json:"local_link"`
	Date         string    `json:"data"`
	StartTime    string    `json:"horario_inicio"`
	EndTime      string    `json:"horario_fim"`
	Objective    string    `json:"objetivo"`
	Reminders    string    `json:"lembretes"`
	MeetingNotes string    `json:"notas_reuniao"`
	NextSteps    string    `json:"proximos_passos"`
	CreatedAt    time.Time `json:"criado_em"`
	UpdatedAt    time.Time `json:"atualizado_em"`
}

// AppointmentInput holds the user-editable appointment fields.
type AppointmentInput struct {
	Title        string `json:"titulo"`
	Participants string `json:"participantes"`
	Subject      string `json:"assunto_principal"`
	Keyword      string `json:"palavra_chave"`
	Location     string `json:"local_link"`
	Date         string `json:"data"`
	StartTime    string `json:"horario_inicio"`
	EndTime      string `json:"horario_fim"`
	Objective    string `json:"objetivo"`
	Reminders    string `json:"lembretes"`
	MeetingNotes string `json:"notas_reuniao"`
	NextSteps    string `json:"proximos_passos"`
}

// Normalize sanitizes every text field.
func (in AppointmentInput) Normalize() AppointmentInput {
	in.Title = SanitizeText(in.Title)
	in.Participants = SanitizeText(in.Participants)
	in.Subject = SanitizeText(in.Subject)
	in.Keyword = SanitizeText(in.Keyword)
	in.Location = SanitizeText(in.Location)
	in.Date = strings.TrimSpace(in.Date)
	in.StartTime = strings.TrimSpace(in.StartTime)
	in.EndTime = strings.TrimSpace(in.EndTime)
	in.Objective = SanitizeText(in.Objective)
	in.Reminders = SanitizeText(in.Reminders)
	in.MeetingNotes = SanitizeText(in.MeetingNotes)
	in.NextSteps = SanitizeText(in.NextSteps)
	return in
}

// Validate reports every problem with the input joined into one error.
func (in AppointmentInput) Validate() error {
	var errs []error
	if in.Title == "" {
		errs = append(errs, fmt.Errorf("%w: titulo is required", ErrInvalidTitle))
	}
	if in.Date == "" {
		errs = append(errs, fmt.Errorf("%w: data is required", ErrInvalidDate))
	} else if _, err := ParseDate(in.Date); err != nil {
		errs = append(errs, err)
	}
	if in.StartTime == "" {
		errs = append(errs, fmt.Errorf("%w: horario_inicio is required", ErrInvalidTime))
	}
	if in.EndTime == "" {
		errs = append(errs, fmt.Errorf("%w: horario_fim is required", ErrInvalidTime))
	}
	if in.StartTime != "" && in.EndTime != "" {
		_, errStart := ParseClock(in.StartTime)
		_, errEnd := ParseClock(in.EndTime)
		switch {
		case errStart != nil:
			errs = append(errs, errStart)
		case errEnd != nil:
			errs = append(errs, errEnd)
		case !IsValidTimeRange(in.StartTime, in.EndTime):
			errs = append(errs, fmt.Errorf("%w: horario_fim must be after horario_inicio", ErrInvalidTimeRange))
		}
	}
	return errors.Join(errs...)
}

// NewAppointment validates input and builds an appointment stamped with now.
func NewAppointment(id string, in AppointmentInput, now time.Time) (Appointment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Appointment{}, ErrInvalidID
	}
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return Appointment{}, err
	}
	a := Appointment{ID: id, CreatedAt: now.UTC()}
	a.apply(in, now)
	return a, nil
}

// Update replaces every editable field with the validated input.
func (a *Appointment) Update(in AppointmentInput, now time.Time) error {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return err
	}
	a.apply(in, now)
	return nil
}

// SetNextSteps stores generated follow-ups.
func (a *Appointment) SetNextSteps(steps string, now time.Time) {
	a.NextSteps = steps
	a.UpdatedAt = now.UTC()
}

// Input returns the editable fields of the appointment.
func (a Appointment) Input() AppointmentInput {
	return AppointmentInput{
		Title:        a.Title,
		Participants: a.Participants,
		Subject:      a.Subject,
		Keyword:      a.Keyword,
		Location:     a.Location,
		Date:         a.Date,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		Objective:    a.Objective,
		Reminders:    a.Reminders,
		MeetingNotes: a.MeetingNotes,
		NextSteps:    a.NextSteps,
	}
}

func (a *Appointment) apply(in AppointmentInput, now time.Time) {
	a.Title = in.Title
	a.Participants = in.Participants
	a.Subject = in.Subject
	a.Keyword = in.Keyword
	a.Location = in.Location
	a.Date = in.Date
	a.StartTime = in.StartTime
	a.EndTime = in.EndTime
	a.Objective = in.Objective
	a.Reminders = in.Reminders
	a.MeetingNotes = in.MeetingNotes
	a.NextSteps = in.NextSteps
	a.UpdatedAt = now.UTC()
}
