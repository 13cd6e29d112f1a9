package mailer

const emailTemplates = `
{{define "verification"}}
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.AppName}}</h2>
  <p>Use this code to confirm your email address:</p>
  <p style="font-size: 28px; font-weight: bold; letter-spacing: 4px;">{{.Code}}</p>
  <p>The code expires in 10 minutes. If you did not request it, ignore this message.</p>
</body>
</html>
{{end}}
`
