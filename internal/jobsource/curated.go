package jobsource

import (
	"strings"

	"github.com/erenakay1/CV-Analizer/internal/region"
)

// CuratedDomestic returns the hand-maintained Turkish tech listings served
// when every domestic source fails. The slice is a fresh copy.
func CuratedDomestic() []Listing {
	return clone(curatedDomestic)
}

// CuratedGlobal returns remote-friendly international listings served when
// the global source fails.
func CuratedGlobal() []Listing {
	return clone(curatedGlobal)
}

func clone(in []Listing) []Listing {
	out := make([]Listing, len(in))
	copy(out, in)
	return out
}

// FilterByCity keeps listings whose location mentions city. With no city, or
// when nothing matches, the input is returned unchanged.
func FilterByCity(listings []Listing, city string) []Listing {
	want := region.Fold(city)
	if want == "" {
		return listings
	}
	var out []Listing
	for _, l := range listings {
		if strings.Contains(region.Fold(l.Location), want) {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return listings
	}
	return out
}

var curatedDomestic = []Listing{
	{
		Title:          "Senior Yazılım Geliştirme Uzmanı",
		Company:        "Trendyol",
		Location:       "Istanbul (Avrupa Yakası)",
		SalaryText:     "35.000 - 50.000 TL",
		Description:    "Trendyol Tech bünyesinde mikroservis mimarisi ile çalışacak, Python/Java bilgisine sahip deneyimli yazılım geliştirici arıyoruz. Aylık 50M+ kullanıcıya hizmet veren sistemler üzerinde çalışma fırsatı.",
		URL:            "https://www.kariyer.net/is-ilani/trendyol-senior-yazilim-gelistirme-uzmani-2847561",
		PostedLabel:    "2 gün önce",
		EmploymentType: "Tam zamanlı",
	},
	{
		Title:          "Backend Developer (.NET)",
		Company:        "Hepsiburada",
		Location:       "Istanbul (Maslak)",
		SalaryText:     "28.000 - 42.000 TL",
		Description:    "Hepsiburada Tech Team'de .NET Core, mikroservisler ve cloud teknolojileri ile çalışacak backend developer pozisyonu. AWS, Docker, Kubernetes deneyimi tercih sebebi.",
		URL:            "https://www.kariyer.net/is-ilani/hepsiburada-backend-developer-2847562",
		PostedLabel:    "3 gün önce",
		EmploymentType: "Tam zamanlı",
	},
	{
		Title:          "Full Stack Developer",
		Company:        "Getir",
		Location:       "Istanbul (Kadıköy)",
		SalaryText:     "30.000 - 45.000 TL",
		Description:    "Getir'in hızla büyüyen teknoloji ekibinde React, Node.js ve mikroservis mimarisi ile çalışacak full stack developer aranıyor. Dakikalar içinde teslimat yapan sistemlerde çalışma deneyimi.",
		URL:            "https://www.kariyer.net/is-ilani/getir-full-stack-developer-2847563",
		PostedLabel:    "1 gün önce",
		EmploymentType: "Tam zamanlı",
	},
	{
		Title:          "Yazılım Mühendisi (Mobile)",
		Company:        "Turkcell",
		Location:       "Istanbul (Maltepe)",
		SalaryText:     "25.000 - 38.000 TL",
		Description:    "Turkcell Dijital Servisler bünyesinde iOS/Android native uygulama geliştirme. 20M+ kullanıcıya hizmet veren mobil uygulamalar üzerinde çalışma fırsatı.",
		URL:            "https://www.kariyer.net/is-ilani/turkcell-yazilim-muhendisi-mobile-2847564",
		PostedLabel:    "5 gün önce",
		EmploymentType: "Tam zamanlı",
	},
	{
		Title:          "Lead Software Engineer",
		Company:        "Insider",
		Location:       "Istanbul (Maslak) / Remote",
		SalaryText:     "45.000 - 65.000 TL",
		Description:    "Insider'da global pazara hizmet veren SaaS platformu için lead engineer. Python, Go, Kubernetes, AWS deneyimi gerekli. Uluslararası ekip ile çalışma.",
		URL:            "https://www.kariyer.net/is-ilani/insider-lead-software-engineer-2847565",
		PostedLabel:    "4 gün önce",
		EmploymentType: "Tam zamanlı / Hybrid",
	},
	{
		Title:          "Software Engineer (Backend)",
		Company:        "Türk Telekom",
		Location:       "Ankara",
		SalaryText:     "22.000 - 35.000 TL",
		Description:    "Türk Telekom Ar-Ge merkezinde backend sistemler geliştirme. Java/Spring Boot, mikroservisler ve bulut teknolojileri.",
		URL:            "https://www.kariyer.net/is-ilani/turk-telekom-software-engineer-backend-2847566",
		PostedLabel:    "1 hafta önce",
		EmploymentType: "Tam zamanlı",
	},
	{
		Title:          "DevOps Engineer",
		Company:        "N11",
		Location:       "Istanbul (Ümraniye)",
		SalaryText:     "32.000 - 48.000 TL",
		Description:    "N11 e-ticaret platformu için DevOps mühendisi. Kubernetes, Docker, CI/CD, AWS/GCP deneyimi. Günlük milyonlarca işlem yapan sistemlerin altyapısı.",
		URL:            "https://www.kariyer.net/is-ilani/n11-devops-engineer-2847567",
		PostedLabel:    "6 gün önce",
		EmploymentType: "Tam zamanlı",
	},
	{
		Title:          "AI/ML Engineer",
		Company:        "GittiGidiyor (eBay)",
		Location:       "Istanbul (Kozyatağı)",
		SalaryText:     "38.000 - 55.000 TL",
		Description:    "Makine öğrenmesi ve AI sistemleri geliştirme. Python, TensorFlow/PyTorch, NLP. Recommendation ve search sistemleri üzerinde çalışma.",
		URL:            "https://www.kariyer.net/is-ilani/gittigidiyor-ai-ml-engineer-2847568",
		PostedLabel:    "3 gün önce",
		EmploymentType: "Tam zamanlı",
	},
	{
		Title:          "Frontend Developer (React)",
		Company:        "Migros Sanal Market",
		Location:       "Istanbul (Ataşehir)",
		SalaryText:     "26.000 - 38.000 TL",
		Description:    "Migros Sanal Market web ve mobil uygulamalarında React, Next.js ile frontend geliştirme. Modern e-ticaret platformu deneyimi.",
		URL:            "https://www.kariyer.net/is-ilani/migros-frontend-developer-react-2847569",
		PostedLabel:    "2 gün önce",
		EmploymentType: "Tam zamanlı",
	},
	{
		Title:          "Cloud Solutions Architect",
		Company:        "Koç Sistem",
		Location:       "Istanbul / Ankara",
		SalaryText:     "40.000 - 60.000 TL",
		Description:    "Koç Sistem'de bulut mimarisi tasarım ve implementasyon. AWS/Azure sertifikaları tercih sebebi. Enterprise projelerde çalışma.",
		URL:            "https://www.kariyer.net/is-ilani/koc-sistem-cloud-solutions-architect-2847570",
		PostedLabel:    "1 hafta önce",
		EmploymentType: "Tam zamanlı",
	},
}

var curatedGlobal = []Listing{
	{
		Title:          "Senior Backend Engineer (Go)",
		Company:        "GitLab",
		Location:       "Remote",
		SalaryText:     "$120,000 - $180,000 USD",
		Description:    "Build and scale backend services in Go and Ruby for an all-remote company. PostgreSQL, Kubernetes and CI/CD experience expected.",
		URL:            "https://about.gitlab.com/jobs/",
		PostedLabel:    NoPostedLabel,
		EmploymentType: "Full-time",
	},
	{
		Title:          "Software Engineer, Platform",
		Company:        "Automattic",
		Location:       "Remote - Worldwide",
		SalaryText:     NoSalary,
		Description:    "Work on the platform behind WordPress.com. PHP, JavaScript, React and AWS. Fully distributed team across many time zones.",
		URL:            "https://automattic.com/work-with-us/",
		PostedLabel:    NoPostedLabel,
		EmploymentType: "Full-time",
	},
	{
		Title:          "Full Stack Engineer",
		Company:        "Zapier",
		Location:       "Remote (Anywhere)",
		SalaryText:     NoSalary,
		Description:    "Ship product features end to end with Python, Django, TypeScript and React on a remote-first team.",
		URL:            "https://zapier.com/jobs",
		PostedLabel:    NoPostedLabel,
		EmploymentType: "Full-time",
	},
	{
		Title:          "Site Reliability Engineer",
		Company:        "Doist",
		Location:       "Remote - Worldwide",
		SalaryText:     NoSalary,
		Description:    "Keep Todoist and Twist fast and reliable. Python, Linux, Terraform, AWS and observability tooling.",
		URL:            "https://doist.com/careers",
		PostedLabel:    NoPostedLabel,
		EmploymentType: "Full-time",
	},
	{
		Title:          "Frontend Engineer",
		Company:        "Toptal",
		Location:       "Remote",
		SalaryText:     NoSalary,
		Description:    "Build client-facing web applications with JavaScript, TypeScript, React and Node.js for a distributed network of engineers.",
		URL:            "https://www.toptal.com/careers",
		PostedLabel:    NoPostedLabel,
		EmploymentType: "Contractor",
	},
	{
		Title:          "Machine Learning Engineer",
		Company:        "Hugging Face",
		Location:       "Remote",
		SalaryText:     NoSalary,
		Description:    "Train, evaluate and ship open-source models. Python, PyTorch, distributed training and cloud GPU infrastructure.",
		URL:            "https://apply.workable.com/huggingface/",
		PostedLabel:    NoPostedLabel,
		EmploymentType: "Full-time",
	},
}
