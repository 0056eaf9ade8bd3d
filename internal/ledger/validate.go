package ledger

import (
	"net/url"

	"github.com/credvault/cvs/internal/model"
)

const (
	minTitleLen       = 5
	minDescriptionLen = 20
	minCreatorNameLen = 2
)

// validateCreateCampaign 校验建活动输入，一次收集所有字段错误
func validateCreateCampaign(in CreateCampaignInput) error {
	var fields []FieldError

	if len(in.Title) < minTitleLen {
		fields = append(fields, FieldError{
			Field:   "title",
			Message: "title must be at least 5 characters",
		})
	}
	if len(in.Description) < minDescriptionLen {
		fields = append(fields, FieldError{
			Field:   "description",
			Message: "description must be at least 20 characters",
		})
	}
	if in.GoalAmount <= 0 {
		fields = append(fields, FieldError{
			Field:   "goalAmount",
			Message: "goalAmount must be greater than 0",
		})
	}
	if in.Duration <= 0 {
		fields = append(fields, FieldError{
			Field:   "duration",
			Message: "duration must be a positive integer",
		})
	}
	if !model.IsValidAddress(in.CreatorAddress) {
		fields = append(fields, FieldError{
			Field:   "creatorAddress",
			Message: "creatorAddress must be a 0x-prefixed 40-digit hex address",
		})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validateSupport 校验支持输入
func validateSupport(in SupportInput) error {
	var fields []FieldError

	if in.Amount <= 0 {
		fields = append(fields, FieldError{
			Field:   "amount",
			Message: "amount must be greater than 0",
		})
	}
	if !model.IsValidAddress(in.Supporter) {
		fields = append(fields, FieldError{
			Field:   "supporterAddress",
			Message: "supporterAddress must be a 0x-prefixed 40-digit hex address",
		})
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// validateProfileUpdate 校验档案元数据更新
func validateProfileUpdate(address string, upd ProfileUpdate) error {
	var fields []FieldError

	if !model.IsValidAddress(address) {
		fields = append(fields, FieldError{
			Field:   "address",
			Message: "address must be a 0x-prefixed 40-digit hex address",
		})
	}
	if upd.Name != nil && len(*upd.Name) < minCreatorNameLen {
		fields = append(fields, FieldError{
			Field:   "name",
			Message: "name must be at least 2 characters",
		})
	}
	if upd.Avatar != nil && *upd.Avatar != "" && !isValidURL(*upd.Avatar) {
		fields = append(fields, FieldError{
			Field:   "avatar",
			Message: "avatar must be a valid URL",
		})
	}
	for key, link := range upd.SocialLinks {
		if !isValidURL(link) {
			fields = append(fields, FieldError{
				Field:   "socialLinks." + key,
				Message: "must be a valid URL",
			})
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// isValidURL 校验URL格式，仅接受 http/https
func isValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
