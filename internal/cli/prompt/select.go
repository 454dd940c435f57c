package prompt

import (
	"github.com/manifoldco/promptui"
)

// SelectOption represents an item in a selection list.
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

func selectTemplates(withDetails bool) *promptui.SelectTemplates {
	t := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "> {{ .Label | cyan }}",
		Inactive: "  {{ .Label | white }}",
		Selected: "* {{ .Label | green }}",
	}
	if withDetails {
		t.Details = `
{{ "Description:" | faint }}	{{ .Description }}`
	}
	return t
}

// Select prompts for one of options and returns its Value. The cursor
// starts on the option whose Value equals current, if any.
func Select(label string, options []SelectOption, current string) (string, error) {
	start := 0
	for i, opt := range options {
		if opt.Value == current {
			start = i
			break
		}
	}

	p := promptui.Select{
		Label:     label,
		Items:     options,
		Templates: selectTemplates(len(options) > 0 && options[0].Description != ""),
		Size:      10,
		CursorPos: start,
	}

	i, _, err := p.Run()
	if err != nil {
		return "", wrapError(err)
	}
	return options[i].Value, nil
}
