package domain

// Category groups tracked kinds for mutual exclusion. Nursing and bottle are
// both feeding.
type Category string

const (
	CategoryNone     Category = ""
	CategoryFeeding  Category = "feeding"
	CategorySleep    Category = "sleep"
	CategoryPumping  Category = "pumping"
	CategoryActivity Category = "activity"
)

var categoryByKind = map[string]Category{
	"nursing":  CategoryFeeding,
	"bottle":   CategoryFeeding,
	"sleep":    CategorySleep,
	"pumping":  CategoryPumping,
	"activity": CategoryActivity,
	"diaper":   CategoryNone,
}

// exclusions is keyed by the new activity's category against each existing
// category. Pumping excludes nothing and nothing excludes pumping.
var exclusions = map[Category]map[Category]bool{
	CategorySleep:    {CategoryFeeding: true, CategoryActivity: true},
	CategoryFeeding:  {CategorySleep: true, CategoryActivity: true},
	CategoryActivity: {CategorySleep: true},
	CategoryPumping:  {},
}

var sessionKinds = map[string]bool{
	"nursing": true,
	"pumping": true,
	"sleep":   true,
}

// CategoryOf reports the category of a tracked kind and whether the kind is
// known at all.
func CategoryOf(kind string) (Category, bool) {
	c, ok := categoryByKind[kind]
	return c, ok
}

// Excludes reports whether starting newKind conflicts with an existing kind.
func Excludes(newKind, existingKind string) bool {
	n, _ := CategoryOf(newKind)
	e, _ := CategoryOf(existingKind)
	return exclusions[n][e]
}

func SupportsSession(kind string) bool {
	return sessionKinds[kind]
}
