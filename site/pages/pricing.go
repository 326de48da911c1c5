package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxsite/site/internal/markup"
)

// Plan is one pricing tier.
type Plan struct {
	Name     string
	Price    int
	Features []string
	CTAText  string
	CTALink  string
	Popular  bool
}

// Plans are the published pricing tiers.
var Plans = []Plan{
	{
		Name:  "Starter",
		Price: 9,
		Features: []string{
			"50 generations per month",
			"Basic image editing",
			"Standard resolution",
			"Email support",
		},
		CTAText: "Start Free Trial",
		CTALink: "/signup?plan=starter",
	},
	{
		Name:  "Pro",
		Price: 29,
		Features: []string{
			"200 generations per month",
			"Advanced image editing",
			"High resolution",
			"Priority support",
			"Custom styles",
		},
		CTAText: "Start Free Trial",
		CTALink: "/signup?plan=pro",
		Popular: true,
	},
	{
		Name:  "Business",
		Price: 99,
		Features: []string{
			"Unlimited generations",
			"Full image editing suite",
			"4K resolution",
			"24/7 support",
			"Custom styles",
			"API access",
		},
		CTAText: "Contact Sales",
		CTALink: "/contact",
	},
	{
		Name:  "Enterprise",
		Price: 299,
		Features: []string{
			"Unlimited generations",
			"Full image editing suite",
			"8K resolution",
			"Dedicated support",
			"Custom AI models",
			"API access",
			"White-label solution",
		},
		CTAText: "Contact Sales",
		CTALink: "/contact",
	},
}

// Pricing lists plans. It has no async sections.
func Pricing(plans []Plan) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := markup.New(ctx, w)
		m.Open("header", markup.Class("page-header"))
		m.Elem("h1", nil, "Simple, Transparent Pricing")
		m.Elem("p", markup.Class("lede"), "Choose the plan that's right for you")
		m.Close("header")

		m.Open("div", markup.Class("plans"))
		for _, p := range plans {
			class := "plan"
			cta := "btn btn-secondary"
			if p.Popular {
				class += " plan-popular"
				cta = "btn btn-primary"
			}
			m.Open("div", markup.Class(class))
			m.Elem("h2", nil, p.Name)
			m.Open("div", markup.Class("price"))
			m.Elem("span", markup.Class("amount"), fmt.Sprintf("$%d", p.Price))
			m.Elem("span", markup.Class("period"), "/month")
			m.Close("div")
			m.Open("ul", markup.Class("plan-features"))
			for _, f := range p.Features {
				m.Elem("li", nil, f)
			}
			m.Close("ul")
			m.Elem("a", templ.Attributes{"href": markup.SafeURL(p.CTALink), "class": cta}, p.CTAText)
			m.Close("div")
		}
		m.Close("div")

		m.Open("p", markup.Class("custom-plan")).Text("Need a custom plan? ")
		m.Elem("a", templ.Attributes{"href": "/contact"}, "Contact us")
		m.Close("p")
		return m.Err()
	})
}
