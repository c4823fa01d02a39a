// Package seed loads the starter catalog used by fresh environments.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/induskill/marketplace-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Result counts the rows Run inserted
type Result struct {
	Partners int
	Courses  int
}

type courseSeed struct {
	course  domain.Course
	partner string
}

// Run inserts the starter partners and courses. Rows that already exist,
// matched by partner name or course title, are left untouched.
func Run(ctx context.Context, db *gorm.DB, logger *zap.Logger) (*Result, error) {
	result := &Result{}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		partnerIDs := make(map[string]*domain.Partner, len(partners))
		for i := range partners {
			p := partners[i]
			var existing domain.Partner
			err := tx.Where("name = ?", p.Name).First(&existing).Error
			switch {
			case err == nil:
				partnerIDs[p.Name] = &existing
				continue
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return fmt.Errorf("failed to look up partner %q: %w", p.Name, err)
			}
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("failed to create partner %q: %w", p.Name, err)
			}
			partnerIDs[p.Name] = &p
			result.Partners++
		}

		for _, s := range courses {
			c := s.course
			var count int64
			if err := tx.Model(&domain.Course{}).Where("title = ?", c.Title).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to look up course %q: %w", c.Title, err)
			}
			if count > 0 {
				continue
			}
			if p, ok := partnerIDs[s.partner]; ok {
				c.PartnerID = &p.ID
				c.CompanyName = p.Name
			}
			if err := tx.Create(&c).Error; err != nil {
				return fmt.Errorf("failed to create course %q: %w", c.Title, err)
			}
			result.Courses++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Seed catalog loaded",
		zap.Int("partners_created", result.Partners),
		zap.Int("courses_created", result.Courses),
	)
	return result, nil
}

var partners = []domain.Partner{
	{
		Name:             "Tata Technologies",
		Industry:         "Automotive",
		Location:         "Pune, Maharashtra",
		Description:      "Engineering and product development services for the automotive and manufacturing sectors.",
		EmployeeCount:    "10000+",
		FoundedYear:      1989,
		Website:          "https://www.tatatechnologies.com",
		ContactEmail:     "training@tatatechnologies.example",
		TrainingPrograms: []string{"CAD/CAM", "PLM", "EV Systems"},
	},
	{
		Name:             "Larsen & Toubro",
		Industry:         "Construction",
		Location:         "Mumbai, Maharashtra",
		Description:      "Engineering, construction and heavy manufacturing conglomerate with in-house skill academies.",
		EmployeeCount:    "10000+",
		FoundedYear:      1938,
		Website:          "https://www.larsentoubro.com",
		ContactEmail:     "skills@lnt.example",
		TrainingPrograms: []string{"Welding", "Formwork", "Site Safety"},
	},
	{
		Name:             "Siemens India",
		Industry:         "Industrial Automation",
		Location:         "Bengaluru, Karnataka",
		Description:      "Automation, digitalization and electrification technology partner.",
		EmployeeCount:    "5000-10000",
		FoundedYear:      1957,
		Website:          "https://www.siemens.co.in",
		ContactEmail:     "academy@siemens.example",
		TrainingPrograms: []string{"PLC Programming", "SCADA", "Industrial Networks"},
	},
	{
		Name:             "Bharat Heavy Electricals",
		Industry:         "Energy",
		Location:         "New Delhi",
		Description:      "Power generation equipment manufacturer running apprenticeship and technician programs.",
		EmployeeCount:    "10000+",
		FoundedYear:      1964,
		Website:          "https://www.bhel.com",
		ContactEmail:     "hrd@bhel.example",
		TrainingPrograms: []string{"Boiler Operation", "Turbine Maintenance"},
	},
}

var courses = []courseSeed{
	{
		partner: "Larsen & Toubro",
		course: domain.Course{
			Title:        "Advanced Welding Techniques",
			Location:     "Chennai, Tamil Nadu",
			Type:         domain.CourseTypeOnsite,
			Duration:     "6 weeks",
			Price:        "₹25,000",
			Description:  "Hands-on TIG, MIG and arc welding with certification preparation.",
			Tags:         []string{"Welding", "Fabrication", "Certification"},
			Rating:       4.8,
			Syllabus:     []string{"Welding safety", "MIG welding", "TIG welding", "Weld inspection"},
			Requirements: []string{"ITI or diploma in a mechanical trade"},
			Outcomes:     []string{"Produce code-quality welds", "Read weld symbols"},
			IsPublished:  true,
		},
	},
	{
		partner: "Siemens India",
		course: domain.Course{
			Title:        "PLC Programming Fundamentals",
			Location:     "Bengaluru, Karnataka",
			Type:         domain.CourseTypeHybrid,
			Duration:     "8 weeks",
			Price:        "₹32,000",
			Description:  "Ladder logic, function blocks and commissioning on SIMATIC controllers.",
			Tags:         []string{"PLC", "Automation", "SIMATIC"},
			Rating:       4.7,
			Syllabus:     []string{"PLC hardware", "Ladder logic", "Timers and counters", "HMI basics"},
			Requirements: []string{"Basic electrical knowledge"},
			Outcomes:     []string{"Write and debug ladder programs", "Commission a small line"},
			IsPublished:  true,
		},
	},
	{
		partner: "Tata Technologies",
		course: domain.Course{
			Title:        "CNC Machining and CAM",
			Location:     "Pune, Maharashtra",
			Type:         domain.CourseTypeOnsite,
			Duration:     "10 weeks",
			Price:        "₹40,000",
			Description:  "G-code, tooling and CAM toolpaths for 3-axis milling and turning.",
			Tags:         []string{"CNC", "CAM", "Machining"},
			Rating:       4.6,
			Syllabus:     []string{"Machine setup", "G-code", "CAM toolpaths", "Quality checks"},
			Requirements: []string{"Engineering drawing basics"},
			Outcomes:     []string{"Program and run a CNC mill"},
			IsPublished:  true,
		},
	},
	{
		partner: "Tata Technologies",
		course: domain.Course{
			Title:        "Electric Vehicle Systems",
			Location:     "Online",
			Type:         domain.CourseTypeOnline,
			Duration:     "4 weeks",
			Price:        "₹12,000",
			Description:  "Battery packs, motors and power electronics for EV technicians.",
			Tags:         []string{"EV", "Battery", "Automotive"},
			Rating:       4.5,
			Syllabus:     []string{"Battery chemistry", "BMS", "Traction motors", "Charging"},
			Outcomes:     []string{"Diagnose common EV faults"},
			IsPublished:  true,
		},
	},
	{
		partner: "Bharat Heavy Electricals",
		course: domain.Course{
			Title:        "Industrial Boiler Operation",
			Location:     "Tiruchirappalli, Tamil Nadu",
			Type:         domain.CourseTypeOnsite,
			Duration:     "3 months",
			Price:        "₹45,000",
			Description:  "Boiler attendant training covering operation, water treatment and statutory inspection.",
			Tags:         []string{"Boiler", "Energy", "Safety"},
			Rating:       4.4,
			Syllabus:     []string{"Boiler types", "Water treatment", "Safety valves", "IBR regulations"},
			Requirements: []string{"10th pass", "Age 18+"},
			Outcomes:     []string{"Prepare for the boiler attendant exam"},
			IsPublished:  true,
		},
	},
	{
		partner: "Larsen & Toubro",
		course: domain.Course{
			Title:        "Construction Site Safety",
			Location:     "Online",
			Type:         domain.CourseTypeOnline,
			Duration:     "2 weeks",
			Price:        "₹6,500",
			Description:  "Hazard identification, PPE and permit-to-work systems for site supervisors.",
			Tags:         []string{"Safety", "Construction"},
			Rating:       4.9,
			Syllabus:     []string{"Hazard identification", "PPE", "Working at height", "Permits"},
			Outcomes:     []string{"Run a daily safety briefing"},
			IsPublished:  true,
		},
	},
}
