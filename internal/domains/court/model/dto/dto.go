package dto

import (
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"rally/internal/domains/court/model"
	"rally/shared"
	"rally/shared/constant"
	gDto "rally/shared/dto"
	gModel "rally/shared/model"
	"rally/shared/timezone"
)

type CreateCourtRequest struct {
	Name      string                `json:"name"       validate:"required,max=100"`
	Location  string                `json:"location"   validate:"omitempty,max=100"`
	OpenTime  string                `json:"open_time"  validate:"required"`
	CloseTime string                `json:"close_time" validate:"required"`
	Image     *multipart.FileHeader `json:"image"      validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
	Active    *bool                 `json:"active"     validate:"omitempty"`
}

func (c *CreateCourtRequest) ToModel(user string, imageURL string) (model.Court, error) {
	openTime, err := time.Parse(constant.TimeOnlyFormat, c.OpenTime)
	if err != nil {
		return model.Court{}, err
	}

	closeTime, err := time.Parse(constant.TimeOnlyFormat, c.CloseTime)
	if err != nil {
		return model.Court{}, err
	}

	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Court{
		ID:        uuid.NewString(),
		Name:      c.Name,
		Location:  c.Location,
		OpenTime:  openTime,
		CloseTime: closeTime,
		Image:     imageURL,
		Active:    active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  user,
			ModifiedBy: user,
		},
	}, nil
}

type UpdateCourtRequest struct {
	Name      string                `db:"name"     json:"name"                                                                 validate:"omitempty,max=100"`
	Location  string                `db:"location" json:"location"                                                             validate:"omitempty,max=100"`
	OpenTime  string                `json:"open_time"  validate:"omitempty"`
	CloseTime string                `json:"close_time" validate:"omitempty"`
	Image     *multipart.FileHeader `json:"image"  validate:"omitempty,mimetypes=image/png image/jpg image/jpeg,maxfilesize=1"`
	ImageFile multipart.File        `json:"-"`
	Active    *bool                 `db:"active"   json:"active"                                                               validate:"omitempty"`
}

type CourtResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	OpenTime  string `json:"open_time"`
	CloseTime string `json:"close_time"`
	Image     string `json:"image"`
	Active    bool   `json:"active"`
	gDto.Metadata
}

func (r *CourtResponse) FromModel(model model.Court) {
	r.ID = model.ID
	r.Name = model.Name
	r.Location = model.Location
	r.OpenTime = model.OpenTime.Format(constant.TimeOnlyFormat)
	r.CloseTime = model.CloseTime.Format(constant.TimeOnlyFormat)
	r.Image = model.Image
	r.Active = model.Active
	r.Metadata.FromModel(model.Metadata)
}

type GetCourtsResponse struct {
	Courts    []CourtResponse `json:"courts"`
	TotalPage int             `json:"total_page"`
	TotalData int             `json:"total_data"`
}

func (r *GetCourtsResponse) FromModels(models []model.Court, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Courts = make([]CourtResponse, len(models))
	for i, mod := range models {
		r.Courts[i].FromModel(mod)
	}
}
