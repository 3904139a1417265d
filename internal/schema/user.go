package schema

const DefaultIsActive = true

// User is a standalone account record. Nothing else references it.
type User struct {
	Name     string `bson:"name" validate:"required"`
	Email    string `bson:"email" validate:"required"`
	Address  string `bson:"address" validate:"required"`
	Age      *int   `bson:"age" validate:"omitempty,gte=0,lte=120"`
	IsActive bool   `bson:"is_active"`
}

type UserInput struct {
	Name     string
	Email    string
	Address  string
	Age      *int
	IsActive *bool
}

func NewUser(in UserInput) (User, error) {
	u := User{
		Name:     in.Name,
		Email:    in.Email,
		Address:  in.Address,
		Age:      in.Age,
		IsActive: valueOr(in.IsActive, DefaultIsActive),
	}
	if err := Validate(u); err != nil {
		return User{}, err
	}
	return u, nil
}
