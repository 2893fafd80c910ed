package domain

import "strings"

// Category is a KPI class assigned to a column by keyword match.
type Category string

// KPI categories in classification order.
const (
	CategoryLearningCompletion    Category = "learning_completion"
	CategoryLearningEngagement    Category = "learning_engagement"
	CategoryLearningPerformance   Category = "learning_performance"
	CategoryOperationalEfficiency Category = "operational_efficiency"
	CategoryTrainingCost          Category = "training_cost"
)

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Description returns a human-readable label for the category.
func (c Category) Description() string {
	switch c {
	case CategoryLearningCompletion:
		return "Learning completion"
	case CategoryLearningEngagement:
		return "Learning engagement"
	case CategoryLearningPerformance:
		return "Learning performance"
	case CategoryOperationalEfficiency:
		return "Operational efficiency"
	case CategoryTrainingCost:
		return "Training cost"
	default:
		return unknownDescription
	}
}

// CategoryKeywords pairs a category with its lower-case keyword substrings.
type CategoryKeywords struct {
	Category Category
	Keywords []string
}

// taxonomy is evaluated top to bottom; the first category with any
// keyword contained in the column name wins.
var taxonomy = []CategoryKeywords{
	{
		Category: CategoryLearningCompletion,
		Keywords: []string{
			"completion", "progress", "finished", "graduated", "certified",
			"pass rate", "completion rate", "graduation rate", "certification rate",
		},
	},
	{
		Category: CategoryLearningEngagement,
		Keywords: []string{
			"engagement", "participation", "active", "attendance", "session",
			"login", "access", "view", "download", "time spent", "duration",
		},
	},
	{
		Category: CategoryLearningPerformance,
		Keywords: []string{
			"score", "grade", "performance", "assessment", "test", "exam",
			"quiz", "evaluation", "rating", "ranking", "percentile",
		},
	},
	{
		Category: CategoryOperationalEfficiency,
		Keywords: []string{
			"efficiency", "productivity", "output", "throughput", "turnaround",
			"cycle time", "processing time", "response time", "lead time",
		},
	},
	{
		Category: CategoryTrainingCost,
		Keywords: []string{
			"cost", "expense", "budget", "spending", "investment",
			"roi", "return", "value", "benefit", "saving",
		},
	},
}

// Taxonomy returns a copy of the ordered category keyword list.
func Taxonomy() []CategoryKeywords {
	out := make([]CategoryKeywords, len(taxonomy))
	for i, ck := range taxonomy {
		out[i] = CategoryKeywords{
			Category: ck.Category,
			Keywords: append([]string(nil), ck.Keywords...),
		}
	}
	return out
}

// AllCategories returns the categories in classification order.
func AllCategories() []Category {
	out := make([]Category, len(taxonomy))
	for i, ck := range taxonomy {
		out[i] = ck.Category
	}
	return out
}

// Classify assigns a KPI category to a column name.
// Returns false if no keyword matches.
func Classify(column string) (Category, bool) {
	name := strings.ToLower(column)
	for _, ck := range taxonomy {
		for _, kw := range ck.Keywords {
			if strings.Contains(name, kw) {
				return ck.Category, true
			}
		}
	}
	return "", false
}
