package dto

// ExportQuery selects the output format and an optional view filter.
type ExportQuery struct {
	Format    string `form:"format" validate:"required,oneof=csv pdf"`
	SectionID string `form:"sectionId"`
	TeacherID string `form:"teacherId"`
}
