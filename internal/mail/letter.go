package mail

import (
	"bytes"
	htmltemplate "html/template"
	"strings"
	"text/template"
)

// LetterParams is everything the cover letter varies on. The body itself is
// fixed; only company and role are per-record.
type LetterParams struct {
	CompanyName   string
	RoleTitle     string
	ApplicantName string
	ContactEmail  string
}

var textLetter = template.Must(template.New("letter").Parse(`Dear Hiring Manager at {{.CompanyName}},

I hope this message finds you well.

I am writing to express my keen interest in the {{.RoleTitle}} position at {{.CompanyName}}. With 4+ years of experience in developing modern, responsive, and high-performing web applications, I am confident that my technical expertise and creative mindset would make me a valuable addition to your team.

TECHNICAL EXPERTISE
- Frontend Technologies: HTML5, CSS3, JavaScript, TypeScript, React.js (v18), Next.js, D3.js, Three.js
- State Management: Redux, Context API, Zustand, MobX
- Styling Frameworks & UI Libraries: SCSS, Tailwind CSS, Bootstrap, Material UI, Chakra UI, Ant Design
- Development & Collaboration Tools: Git, Visual Studio Code, Figma, Trello, Jira, Webpack, Babel
- Testing Frameworks: Jest, React Testing Library

CORE STRENGTHS
- Responsive Design & Performance Optimization
- React Hooks & Reusable Components
- Cross-Functional Collaboration & Agile Delivery
- Code Quality, CI/CD & Project Management

PROFESSIONAL DETAILS
- Total Experience: 4+ Years
- Experience in ReactJS: 3 Years
- Experience in NextJS: 2 Years
- Experience in TypeScript: 2 Years
- Notice Period: Immediate Joiner
- Current Location: Dubai, UAE

I am particularly drawn to {{.CompanyName}} because of your innovative approach to technology and commitment to excellence in the industry. I am excited about the opportunity to contribute my skills to your projects and grow alongside your talented team.

I have attached my comprehensive resume for your review. I would be delighted to discuss how my background and expertise align with {{.CompanyName}}'s goals. Please let me know a convenient time for a conversation.

Thank you for your time and consideration.

Best regards,
{{.ApplicantName}}
Software Developer
{{if .ContactEmail}}
Email: {{.ContactEmail}}{{end}}`))

var htmlLetter = htmltemplate.Must(htmltemplate.New("letter").Parse(`<!DOCTYPE html>
<html>
<head>
  <style>
    body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 750px; margin: 0 auto; padding: 20px; }
    .header { text-align: center; border-bottom: 3px solid #2563eb; padding-bottom: 20px; margin-bottom: 30px; }
    .header h1 { color: #2563eb; font-size: 26px; margin: 0 0 10px 0; }
    .section-title { color: #2563eb; font-size: 16px; font-weight: 700; margin: 25px 0 12px 0; text-transform: uppercase; border-bottom: 2px solid #e5e7eb; padding-bottom: 8px; }
    .highlights { background-color: #f0f7ff; padding: 20px 25px; border-left: 4px solid #2563eb; margin: 15px 0; border-radius: 4px; }
    .signature { font-weight: 700; color: #2563eb; font-size: 18px; }
  </style>
</head>
<body>
  <div class="header">
    <h1>Application for {{.RoleTitle}}</h1>
    <p>{{.CompanyName}}</p>
  </div>
  <p>Dear Hiring Manager at <strong>{{.CompanyName}}</strong>,</p>
  <p>I hope this message finds you well.</p>
  <p>I am writing to express my keen interest in the <strong>{{.RoleTitle}}</strong> position at {{.CompanyName}}. With <strong>4+ years of experience</strong> in developing modern, responsive, and high-performing web applications, I am confident that my technical expertise and creative mindset would make me a valuable addition to your team.</p>
  <div class="section-title">Technical Expertise</div>
  <div class="highlights">
    <ul>
      <li><strong>Frontend Technologies:</strong> HTML5, CSS3, JavaScript, TypeScript, React.js (v18), Next.js, D3.js, Three.js</li>
      <li><strong>State Management:</strong> Redux, Context API, Zustand, MobX</li>
      <li><strong>Styling Frameworks &amp; UI Libraries:</strong> SCSS, Tailwind CSS, Bootstrap, Material UI, Chakra UI, Ant Design</li>
      <li><strong>Development &amp; Collaboration Tools:</strong> Git, Visual Studio Code, Figma, Trello, Jira, Webpack, Babel</li>
      <li><strong>Testing Frameworks:</strong> Jest, React Testing Library</li>
    </ul>
  </div>
  <div class="section-title">Core Strengths</div>
  <div class="highlights">
    <ul>
      <li>Responsive Design &amp; Performance Optimization</li>
      <li>React Hooks &amp; Reusable Components</li>
      <li>Cross-Functional Collaboration &amp; Agile Delivery</li>
      <li>Code Quality, CI/CD &amp; Project Management</li>
    </ul>
  </div>
  <p>I am particularly drawn to {{.CompanyName}} because of your innovative approach to technology and commitment to excellence in the industry. I am excited about the opportunity to contribute my skills to your projects and grow alongside your talented team.</p>
  <p>I have attached my comprehensive resume for your review. I would be delighted to discuss how my background and expertise align with {{.CompanyName}}'s goals. Please let me know a convenient time for a conversation.</p>
  <p>Thank you for your time and consideration.</p>
  <p class="signature">Best regards,<br>{{.ApplicantName}}</p>
  <p>Software Developer{{if .ContactEmail}}<br>Email: {{.ContactEmail}}{{end}}</p>
</body>
</html>`))

// RenderLetter produces subject plus both body variants for one record.
func RenderLetter(p LetterParams) (subject, text, html string, err error) {
	subject = Subject(p)

	var tb bytes.Buffer
	if err = textLetter.Execute(&tb, p); err != nil {
		return "", "", "", err
	}

	var hb bytes.Buffer
	if err = htmlLetter.Execute(&hb, p); err != nil {
		return "", "", "", err
	}

	return subject, tb.String(), hb.String(), nil
}

func Subject(p LetterParams) string {
	var b strings.Builder
	b.WriteString("Application for ")
	b.WriteString(p.RoleTitle)
	b.WriteString(" - ")
	b.WriteString(p.ApplicantName)
	b.WriteString(" | 4+ Years React/Next.js Experience")
	return b.String()
}
