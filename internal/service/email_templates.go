package service

import "fmt"

func signupVerificationTemplate(code, verifyURL, appName, supportEmail string) (string, string) {
	subject := "Verify Your Email Address"
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Verify Your Email Address</h2>
  <p>Hello,</p>
  <p>Thank you for signing up with <strong>%[1]s</strong>. To complete your registration, enter the verification code below:</p>
  <div style="background-color: #f8f9fa; padding: 20px; text-align: center; margin: 20px 0; font-size: 28px; font-weight: bold; letter-spacing: 5px;">%[2]s</div>
  <p>Or verify directly by clicking this link:</p>
  <p><a href="%[3]s">%[3]s</a></p>
  <div style="border-left: 4px solid #f0f0f0; padding: 10px; background-color: #f8f9fa; margin: 20px 0;">
    <p style="margin: 0; font-weight: bold;">Important:</p>
    <p style="margin: 5px 0 0 0;">The code is valid for 5 minutes and can only be used once. The link expires after 24 hours.</p>
    <p style="margin: 5px 0 0 0;">If you didn't request this, you can safely ignore this email.</p>
  </div>
  <p>Thank you,</p>
  <p>The <strong>%[1]s</strong> Team</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <div style="font-size: 12px;">
    <p><strong>%[1]s</strong> - Automating Property Management</p>
    <p>unitnode.com | %[4]s</p>
  </div>
</div>`, appName, code, verifyURL, supportEmail)

	return subject, body
}

func loginCodeTemplate(code, name, appName, supportEmail string) (string, string) {
	if name == "" {
		name = "there"
	}

	subject := fmt.Sprintf("Your %s sign-in code", appName)
	body := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Sign-in Verification</h2>
  <p>Hi %[1]s,</p>
  <p>Use the code below to finish signing in to <strong>%[2]s</strong>:</p>
  <div style="background-color: #f8f9fa; padding: 20px; text-align: center; margin: 20px 0; font-size: 28px; font-weight: bold; letter-spacing: 5px;">%[3]s</div>
  <div style="border-left: 4px solid #f0f0f0; padding: 10px; background-color: #f8f9fa; margin: 20px 0;">
    <p style="margin: 0; font-weight: bold;">Important:</p>
    <p style="margin: 5px 0 0 0;">This code is valid for 5 minutes and can only be used once.</p>
    <p style="margin: 5px 0 0 0;">If you didn't try to sign in, you can safely ignore this email.</p>
  </div>
  <p>Thank you,</p>
  <p>The <strong>%[2]s</strong> Team</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <div style="font-size: 12px;">
    <p><strong>%[2]s</strong> - Automating Property Management</p>
    <p>unitnode.com | %[4]s</p>
  </div>
</div>`, name, appName, code, supportEmail)

	return subject, body
}
