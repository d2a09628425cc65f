package domain

// FormType identifies a USCIS form supported by the PDF fill service.
type FormType string

const (
	FormI130  FormType = "I-130"
	FormI485  FormType = "I-485"
	FormI765  FormType = "I-765"
	FormI131  FormType = "I-131"
	FormI140  FormType = "I-140"
	FormN400  FormType = "N-400"
	FormG1145 FormType = "G-1145"
	FormI129  FormType = "I-129"
	FormI539  FormType = "I-539"
)

var formTypes = []FormType{
	FormI130, FormI485, FormI765, FormI131, FormI140,
	FormN400, FormG1145, FormI129, FormI539,
}

func FormTypes() []FormType {
	out := make([]FormType, len(formTypes))
	copy(out, formTypes)
	return out
}

func (f FormType) Valid() bool {
	for _, known := range formTypes {
		if f == known {
			return true
		}
	}
	return false
}
