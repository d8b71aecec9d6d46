package catalog

import (
	"fmt"
	"strings"

	"github.com/shopfloor/toolcrib/internal/models"
)

// ParseEntry turns a comma-separated add-item line into a Part according
// to the category schema. The description field, when the category has
// one, may be omitted from the end of the line. Each field is validated;
// the first failure is returned with the field name for the re-prompt.
func ParseEntry(d Descriptor, line string, maxQuantity int) (*models.Part, error) {
	fields := d.InputFields()
	values := strings.Split(line, ",")
	for i := range values {
		values[i] = strings.TrimSpace(values[i])
	}

	minFields := len(fields)
	if d.HasDescription {
		minFields--
	}
	if len(values) < minFields || len(values) > len(fields) {
		return nil, fmt.Errorf("expected %s, got %d values", formatSchema(fields, minFields), len(values))
	}

	part := &models.Part{}
	for i, field := range fields {
		if i >= len(values) {
			break // trailing description omitted
		}
		value := values[i]
		if err := ValidateField(field, value, maxQuantity); err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		switch field {
		case "name":
			part.Name = value
		case "type":
			part.Type = value
		case "size":
			part.Size = value
		case "quantity":
			q, err := ValidateQuantity(value, maxQuantity)
			if err != nil {
				return nil, fmt.Errorf("quantity: %w", err)
			}
			part.Quantity = q
		case "image_url":
			part.ImageURL = value
		case "description":
			part.Description = value
		}
	}
	return part, nil
}

// formatSchema renders the expected field list for error messages, e.g.
// "name, size, quantity[, description]".
func formatSchema(fields []string, minFields int) string {
	required := strings.Join(fields[:minFields], ", ")
	if minFields == len(fields) {
		return required
	}
	return required + "[, " + strings.Join(fields[minFields:], ", ") + "]"
}
