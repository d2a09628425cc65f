package pdffill

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rohanbsher/immigration-ai/internal/domain"
)

// templateFiles maps supported USCIS form types to the template filenames
// hosted by the fill service.
var templateFiles = map[domain.FormType]string{
	domain.FormI130:  "i-130.pdf",
	domain.FormI485:  "i-485.pdf",
	domain.FormI765:  "i-765.pdf",
	domain.FormI131:  "i-131.pdf",
	domain.FormI140:  "i-140.pdf",
	domain.FormN400:  "n-400.pdf",
	domain.FormG1145: "g-1145.pdf",
	domain.FormI129:  "i-129.pdf",
	domain.FormI539:  "i-539.pdf",
}

// safeFieldPart matches one segment of an XFA field path. Anything else is
// rejected before it can reach the template XML.
var safeFieldPart = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

func TemplateFile(formType domain.FormType) (string, error) {
	file, ok := templateFiles[formType]
	if !ok {
		return "", fmt.Errorf("unsupported form type %q: %w", formType, domain.ErrInvalidArgument)
	}
	return file, nil
}

// ValidateFieldName checks a dotted XFA field path (e.g.
// "form1.Pt1Line4a_FamilyName") segment by segment.
func ValidateFieldName(name string) error {
	if name == "" {
		return fmt.Errorf("empty field name: %w", domain.ErrInvalidArgument)
	}
	for _, part := range strings.Split(name, ".") {
		// Strip an XFA occurrence index like "Pt2Line3[0]".
		if idx := strings.IndexByte(part, '['); idx > 0 && strings.HasSuffix(part, "]") {
			part = part[:idx]
		}
		if !safeFieldPart.MatchString(part) {
			return fmt.Errorf("unsafe field segment %q: %w", part, domain.ErrInvalidArgument)
		}
	}
	return nil
}

func ValidateFieldData(fieldData map[string]string) error {
	for name := range fieldData {
		if err := ValidateFieldName(name); err != nil {
			return err
		}
	}
	return nil
}
