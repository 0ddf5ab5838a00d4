package types

// User is an account holder.
type User struct {
	BaseModel
	Email     string
	Password  string
	FirstName string
	LastName  string
}

func (u *User) Variant() Variant { return VariantUser }

func (u *User) Fields() []Field {
	return []Field{
		textField("email", &u.Email),
		textField("password", &u.Password),
		textField("first_name", &u.FirstName),
		textField("last_name", &u.LastName),
	}
}

// State groups cities. Its cities are derived from City.StateID and are not
// stored on the state itself.
type State struct {
	BaseModel
	Name string
}

func (s *State) Variant() Variant { return VariantState }

func (s *State) Fields() []Field {
	return []Field{
		textField("name", &s.Name),
	}
}

// City belongs to a state.
type City struct {
	BaseModel
	StateID string
	Name    string
}

func (c *City) Variant() Variant { return VariantCity }

func (c *City) Fields() []Field {
	return []Field{
		textField("state_id", &c.StateID),
		textField("name", &c.Name),
	}
}

// Amenity is a named feature a place can offer.
type Amenity struct {
	BaseModel
	Name string
}

func (a *Amenity) Variant() Variant { return VariantAmenity }

func (a *Amenity) Fields() []Field {
	return []Field{
		textField("name", &a.Name),
	}
}

// Place is a listing in a city, owned by a user.
type Place struct {
	BaseModel
	CityID          string
	UserID          string
	Name            string
	Description     string
	NumberRooms     int64
	NumberBathrooms int64
	MaxGuest        int64
	PriceByNight    int64
	Latitude        float64
	Longitude       float64
	AmenityIDs      []string
}

func (p *Place) Variant() Variant { return VariantPlace }

func (p *Place) Fields() []Field {
	return []Field{
		textField("city_id", &p.CityID),
		textField("user_id", &p.UserID),
		textField("name", &p.Name),
		textField("description", &p.Description),
		integerField("number_rooms", &p.NumberRooms),
		integerField("number_bathrooms", &p.NumberBathrooms),
		integerField("max_guest", &p.MaxGuest),
		integerField("price_by_night", &p.PriceByNight),
		floatField("latitude", &p.Latitude),
		floatField("longitude", &p.Longitude),
		listField("amenity_ids", &p.AmenityIDs),
	}
}

// Review is a user's text about a place.
type Review struct {
	BaseModel
	PlaceID string
	UserID  string
	Text    string
}

func (r *Review) Variant() Variant { return VariantReview }

func (r *Review) Fields() []Field {
	return []Field{
		textField("place_id", &r.PlaceID),
		textField("user_id", &r.UserID),
		textField("text", &r.Text),
	}
}
