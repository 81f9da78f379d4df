package dtos

type UnitQuery struct {
	PageQuery
	Zone   string
	Search string
}

type CreateUnitRequest struct {
	HouseNumber string  `json:"house_number" validate:"required,max=32,no_xss"`
	Zone        string  `json:"zone" validate:"max=64,no_xss"`
	OwnerName   string  `json:"owner_name" validate:"max=200,no_xss"`
	AreaSqm     float64 `json:"area_sqm" validate:"gte=0"`
}

type UpdateUnitRequest struct {
	HouseNumber *string  `json:"house_number,omitempty" validate:"omitempty,min=1,max=32,no_xss"`
	Zone        *string  `json:"zone,omitempty" validate:"omitempty,max=64,no_xss"`
	OwnerName   *string  `json:"owner_name,omitempty" validate:"omitempty,max=200,no_xss"`
	AreaSqm     *float64 `json:"area_sqm,omitempty" validate:"omitempty,gte=0"`
}
