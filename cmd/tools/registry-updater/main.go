// cmd/tools/registry-updater/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"mobile-forms/pkg/registry"
)

const defaultRegistryPath = "configs/form-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "init":
		err = runInit(os.Args[2:])
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	default:
		help()
		return
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func runInit(args []string) error {
	cmd := flag.NewFlagSet("init", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	force := cmd.Bool("force", false, "Overwrite an existing file")
	cmd.Parse(args)

	if _, err := os.Stat(*path); err == nil && !*force {
		return fmt.Errorf("%s already exists, use -force to overwrite", *path)
	}
	reg := registry.Default()
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	if err := registry.SaveRegistry(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Wrote default registry to %s\n", *path)
	return nil
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	formID := cmd.String("form", "profile", "Form ID")
	name := cmd.String("name", "", "Field name (e.g., middleName)")
	kind := cmd.String("kind", registry.KindText, "Field kind (text, checkbox, image)")
	label := cmd.String("label", "", "Label shown above the input")
	placeholder := cmd.String("placeholder", "", "Placeholder text")
	required := cmd.Bool("required", false, "Whether the field is required")
	maxLength := cmd.Int("maxLength", 0, "Maximum input length, 0 for none")
	keyboard := cmd.String("keyboard", "", "Keyboard (default, email-address, phone-pad, number-pad)")
	mask := cmd.String("mask", "", "Input mask, 9 for a digit")
	secure := cmd.Bool("secure", false, "Hide the typed text")
	cmd.Parse(args)

	if *name == "" || *label == "" {
		cmd.Usage()
		return errors.New("name and label are required for add")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	field := registry.FieldDescriptor{
		Name:        *name,
		Kind:        *kind,
		Label:       *label,
		Placeholder: *placeholder,
		Required:    *required,
		MaxLength:   *maxLength,
		Keyboard:    *keyboard,
		Mask:        *mask,
		Secure:      *secure,
	}
	if err := addField(reg, *formID, field); err != nil {
		return err
	}
	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Added field %s to form %s\n", *name, *formID)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	formID := cmd.String("form", "profile", "Form ID")
	name := cmd.String("name", "", "Field name to update")
	attr := cmd.String("attr", "", "Attribute to update (label, placeholder, required, maxLength, keyboard, mask, secure)")
	value := cmd.String("value", "", "New value for the attribute")
	cmd.Parse(args)

	if *name == "" || *attr == "" {
		cmd.Usage()
		return errors.New("name and attr are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := updateField(reg, *formID, *name, *attr, *value); err != nil {
		return err
	}
	if err := save(reg, *path); err != nil {
		return err
	}
	fmt.Printf("Updated %s.%s %s to %q\n", *formID, *name, *attr, *value)
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultRegistryPath, "Path to registry file")
	cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	fields := 0
	for _, f := range reg.Forms {
		fields += len(f.Fields)
	}
	fmt.Printf("Registry validation passed. Found %d forms, %d fields.\n", len(reg.Forms), fields)
	return nil
}

func addField(reg *registry.FormRegistry, formID string, field registry.FieldDescriptor) error {
	form, err := reg.Find(formID)
	if err != nil {
		return err
	}
	for _, existing := range form.Fields {
		if existing.Name == field.Name {
			return fmt.Errorf("field %s already exists in form %s", field.Name, formID)
		}
	}
	form.Fields = append(form.Fields, field)
	return nil
}

func updateField(reg *registry.FormRegistry, formID, name, attr, value string) error {
	form, err := reg.Find(formID)
	if err != nil {
		return err
	}

	for i := range form.Fields {
		f := &form.Fields[i]
		if f.Name != name {
			continue
		}
		switch attr {
		case "label":
			f.Label = value
		case "placeholder":
			f.Placeholder = value
		case "keyboard":
			f.Keyboard = value
		case "mask":
			f.Mask = value
		case "required", "secure":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("invalid %s value: %w", attr, err)
			}
			if attr == "required" {
				f.Required = b
			} else {
				f.Secure = b
			}
		case "maxLength":
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid maxLength value: %w", err)
			}
			f.MaxLength = n
		default:
			return fmt.Errorf("unknown attribute: %s", attr)
		}
		return nil
	}
	return fmt.Errorf("field %s not found in form %s", name, formID)
}

// save validates before writing so a bad edit never reaches the file.
func save(reg *registry.FormRegistry, path string) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.SaveRegistry(reg, path)
}

func help() {
	fmt.Print(`
Usage: registry-updater <command> [flags]

Commands:
  init     Write the built-in registry to a file
  add      Add a field to a form
  update   Update one attribute of a field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater init -path configs/form-registry.json
  registry-updater add -form profile -name middleName -label "Отчество" -placeholder "Иванович"
  registry-updater update -form profile -name phone -attr maxLength -value 18
  registry-updater validate -path configs/form-registry.json

Use 'registry-updater <command> -h' for more information about a command.
` + "\n")
}
