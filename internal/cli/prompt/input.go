package prompt

import (
	"fmt"
	"strconv"

	"github.com/manifoldco/promptui"

	"github.com/1anyK1/realTime/internal/bytesize"
)

// Input prompts for text input.
func Input(label string, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}

	result, err := p.Run()
	return result, wrapError(err)
}

// InputWithValidation prompts for text input with custom validation.
func InputWithValidation(label, defaultValue string, validate func(string) error) (string, error) {
	p := promptui.Prompt{
		Label:    label,
		Default:  defaultValue,
		Validate: validate,
	}

	result, err := p.Run()
	return result, wrapError(err)
}

// InputInt prompts for a non-negative integer.
func InputInt(label string, defaultValue int) (int, error) {
	result, err := InputWithValidation(label, strconv.Itoa(defaultValue), ValidateNonNegativeInt)
	if err != nil {
		return 0, err
	}
	value, _ := strconv.Atoi(result) // already validated
	return value, nil
}

// InputPort prompts for a TCP port (1-65535).
func InputPort(label string, defaultValue int) (int, error) {
	result, err := InputWithValidation(label, strconv.Itoa(defaultValue), ValidatePort)
	if err != nil {
		return 0, err
	}
	value, _ := strconv.Atoi(result) // already validated
	return value, nil
}

// InputByteSize prompts for a size such as "256" or "4Ki".
func InputByteSize(label string, defaultValue bytesize.ByteSize) (bytesize.ByteSize, error) {
	result, err := InputWithValidation(label, defaultValue.String(), ValidateByteSize)
	if err != nil {
		return 0, err
	}
	return bytesize.Parse(result)
}

// ValidateNonNegativeInt accepts integers >= 0.
func ValidateNonNegativeInt(input string) error {
	n, err := strconv.Atoi(input)
	if err != nil {
		return fmt.Errorf("must be a valid integer")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

// ValidatePort accepts 1-65535.
func ValidatePort(input string) error {
	port, err := strconv.Atoi(input)
	if err != nil {
		return fmt.Errorf("must be a valid integer")
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("must be a valid port (1-65535)")
	}
	return nil
}

// ValidateByteSize accepts positive sizes understood by bytesize.Parse.
func ValidateByteSize(input string) error {
	size, err := bytesize.Parse(input)
	if err != nil {
		return err
	}
	if size == 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}
