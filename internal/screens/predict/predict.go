package predict

import (
	"context"
	"errors"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/hemoscan/internal/api"
	"github.com/abhisek/hemoscan/internal/prediction"
	"github.com/abhisek/hemoscan/internal/router"
	"github.com/abhisek/hemoscan/internal/screen"
	"github.com/abhisek/hemoscan/internal/ui/components"
	"github.com/abhisek/hemoscan/internal/ui/layout"
	"github.com/abhisek/hemoscan/internal/ui/theme"
)

// Submitter sends a questionnaire. *prediction.Workflow satisfies it.
type Submitter interface {
	Submit(ctx context.Context, f prediction.Form) prediction.Outcome
}

type submitDoneMsg struct {
	owner   *PredictScreen
	outcome prediction.Outcome
}

const ruralOption = "rural"

// Focus positions, top to bottom.
const (
	focusAge = iota
	focusGender
	focusRural
	focusHemoglobin
	focusDiet
	focusSymptoms
	focusSubmit
	focusCount
)

// PredictScreen is the risk questionnaire.
type PredictScreen struct {
	submitter Submitter

	age        components.TextInput
	gender     components.Choice
	rural      components.Choice
	hemoglobin components.TextInput
	diet       components.Choice
	symptoms   components.Choice
	button     components.Button

	focus  int
	errs   prediction.Errors
	errMsg string
}

var _ screen.Screen = (*PredictScreen)(nil)
var _ screen.KeyHintProvider = (*PredictScreen)(nil)

// New creates a new, empty PredictScreen.
func New(s Submitter) *PredictScreen {
	genders := make([]components.Option, 0, len(api.Genders))
	for _, g := range api.Genders {
		genders = append(genders, components.Option{Value: string(g), Label: string(g)})
	}
	diets := make([]components.Option, 0, len(api.Diets))
	for _, d := range api.Diets {
		diets = append(diets, components.Option{Value: string(d), Label: strings.ToUpper(string(d[:1])) + string(d[1:])})
	}
	symptoms := make([]components.Option, 0, len(api.Symptoms))
	for _, sym := range api.Symptoms {
		symptoms = append(symptoms, components.Option{Value: string(sym), Label: sym.Label()})
	}

	return &PredictScreen{
		submitter:  s,
		age:        components.NewTextInput("Age", "18-100", components.KindInteger, 3),
		gender:     components.NewChoice("Gender", genders, false),
		rural:      components.NewChoice("Rural mode", []components.Option{{Value: ruralOption, Label: "No hemoglobin measurement available"}}, true),
		hemoglobin: components.NewTextInput("Hemoglobin (g/dL)", "5.0-18.0", components.KindDecimal, 5),
		diet:       components.NewChoice("Diet quality", diets, false),
		symptoms:   components.NewChoice("Symptoms", symptoms, true),
		button:     components.NewButton("Get risk assessment", "Analyzing…"),
		errs:       prediction.Errors{},
	}
}

func (s *PredictScreen) Init() tea.Cmd {
	return s.setFocus(focusAge)
}

func (s *PredictScreen) Title() string {
	return "Risk Assessment"
}

func (s *PredictScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "←→", Description: "Option"},
		{Key: "Space", Description: "Select"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PredictScreen) ruralMode() bool {
	return s.rural.Chosen[ruralOption]
}

// Form returns the questionnaire as currently entered.
func (s *PredictScreen) Form() prediction.Form {
	return prediction.Form{
		Age:        s.age.Value(),
		Gender:     s.gender.Value(),
		Hemoglobin: s.hemoglobin.Value(),
		Diet:       s.diet.Value(),
		Symptoms:   s.symptoms.Values(),
		RuralMode:  s.ruralMode(),
	}
}

func (s *PredictScreen) setFocus(i int) tea.Cmd {
	step := 1
	if i < s.focus {
		step = -1
	}
	i = (i + focusCount) % focusCount
	// The hemoglobin input is hidden in rural mode.
	if i == focusHemoglobin && s.ruralMode() {
		i = (i + step + focusCount) % focusCount
	}
	s.focus = i

	s.age.Blur()
	s.hemoglobin.Blur()
	s.gender.Focused = i == focusGender
	s.rural.Focused = i == focusRural
	s.diet.Focused = i == focusDiet
	s.symptoms.Focused = i == focusSymptoms
	s.button.Focused = i == focusSubmit

	switch i {
	case focusAge:
		return s.age.Focus()
	case focusHemoglobin:
		return s.hemoglobin.Focus()
	}
	return nil
}

func (s *PredictScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case submitDoneMsg:
		if msg.owner != s {
			return s, nil
		}
		return s, s.apply(msg.outcome)

	case tea.KeyMsg:
		switch msg.String() {
		case "tab", "down":
			return s, s.setFocus(s.focus + 1)
		case "shift+tab", "up":
			return s, s.setFocus(s.focus - 1)
		case "enter":
			return s, s.submit()
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case focusAge:
		before := s.age.Value()
		s.age, cmd = s.age.Update(msg)
		if s.age.Value() != before {
			s.edited(prediction.FieldAge)
		}
	case focusHemoglobin:
		before := s.hemoglobin.Value()
		s.hemoglobin, cmd = s.hemoglobin.Update(msg)
		if s.hemoglobin.Value() != before {
			s.edited(prediction.FieldHemoglobin)
		}
	case focusGender:
		if s.gender, _ = s.gender.Update(msg); s.gender.Value() != "" {
			s.edited(prediction.FieldGender)
		}
	case focusRural:
		var changed bool
		if s.rural, changed = s.rural.Update(msg); changed {
			s.edited(prediction.FieldHemoglobin)
		}
	case focusDiet:
		if s.diet, _ = s.diet.Update(msg); s.diet.Value() != "" {
			s.edited(prediction.FieldDiet)
		}
	case focusSymptoms:
		s.symptoms, _ = s.symptoms.Update(msg)
	}
	return s, cmd
}

// edited clears the error for a field the user just changed.
func (s *PredictScreen) edited(f prediction.Field) {
	s.errs.Clear(f)
	s.syncErrors()
}

func (s *PredictScreen) syncErrors() {
	s.age.Err = s.errs[prediction.FieldAge]
	s.gender.Err = s.errs[prediction.FieldGender]
	s.hemoglobin.Err = s.errs[prediction.FieldHemoglobin]
	s.diet.Err = s.errs[prediction.FieldDiet]
}

func (s *PredictScreen) submit() tea.Cmd {
	if s.button.Busy {
		return nil
	}
	s.errMsg = ""
	if errs := prediction.Validate(s.Form()); len(errs) > 0 {
		s.errs = errs
		s.syncErrors()
		return nil
	}

	s.button.Busy = true
	form := s.Form()
	sub := s.submitter
	return func() tea.Msg {
		return submitDoneMsg{owner: s, outcome: sub.Submit(context.Background(), form)}
	}
}

func (s *PredictScreen) apply(o prediction.Outcome) tea.Cmd {
	// Nothing else is pending for this screen once an outcome arrives;
	// submit refuses while busy. An in-flight rejection therefore comes
	// from someone else's submission and is shown like any failure.
	s.button.Busy = false

	if len(o.Fields) > 0 {
		s.errs = o.Fields
		s.syncErrors()
		return nil
	}

	var authErr *prediction.AuthError
	switch {
	case errors.As(o.Err, &authErr):
		s.errMsg = authErr.Error()
		return func() tea.Msg { return router.RecheckMsg{} }
	case o.Err != nil:
		s.errMsg = o.Err.Error()
		return nil
	case o.Navigate:
		return func() tea.Msg {
			return router.NavigateMsg{Route: router.RouteResults, Replace: true}
		}
	}
	return nil
}

func (s *PredictScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("Anemia Risk Questionnaire"))
	b.WriteString("\n\n")

	sections := []string{s.age.View(), s.gender.View(), s.rural.View()}
	if !s.ruralMode() {
		sections = append(sections, s.hemoglobin.View())
	}
	sections = append(sections, s.diet.View(), s.symptoms.View())
	b.WriteString(strings.Join(sections, "\n\n"))

	b.WriteString("\n\n")
	b.WriteString(s.button.View())
	if s.errMsg != "" {
		b.WriteString("\n\n")
		b.WriteString(theme.Banner.Render(s.errMsg))
	}

	card := components.Card("", b.String(), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
