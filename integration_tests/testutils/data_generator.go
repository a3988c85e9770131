package testutils

import (
	"strings"

	"github.com/brianvoe/gofakeit/v7"
)

// Runner is generated registrant data.
type Runner struct {
	Name  string
	Email string
	Phone string
}

// DataGenerator produces reproducible registrants from a seed.
type DataGenerator struct {
	faker *gofakeit.Faker
}

func NewDataGenerator(seed uint64) *DataGenerator {
	return &DataGenerator{faker: gofakeit.New(seed)}
}

// Runner returns a registrant with a unique-looking email.
func (g *DataGenerator) Runner() Runner {
	first := g.faker.FirstName()
	last := g.faker.LastName()
	return Runner{
		Name:  first + " " + last,
		Email: strings.ToLower(first+"."+last+"."+g.faker.LetterN(6)) + "@example.com",
		Phone: g.faker.Phone(),
	}
}

// JerseySize picks one of the seeded sizes.
func (g *DataGenerator) JerseySize() string {
	return g.faker.RandomString([]string{"S", "M", "L", "XL"})
}
